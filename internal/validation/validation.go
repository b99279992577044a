// Package validation holds the declarative request rules shared by the HTTP handlers.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
)

var (
	userNamePattern = regexp.MustCompile(`^[A-Za-z0-9_=+]{5,51}$`)
	// Printable ASCII without whitespace or @ % ? # < > /.
	passwordPattern = regexp.MustCompile(`^[!"$&'()*+,\-.0-9:;=A-Z\[\\\]^_` + "`" + `a-z{|}~]+$`)

	earliestBirthDate = time.Date(1890, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Validator wraps validator.Validate with the service's custom tags.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return userNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return passwordPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "birthdate", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && !t.Before(earliestBirthDate) && !t.After(time.Now())
	})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates s and returns an InvalidArgument error whose message lists
// every failing field.
func (x *Validator) Struct(s any) error {
	err := x.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return oops.Code(apperr.CodeInvalidArgument).Wrap(fmt.Errorf("%w: %w", apperr.ErrInvalidArgument, err))
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return oops.Code(apperr.CodeInvalidArgument).
		With("fields", len(fieldErrs)).
		Wrap(fmt.Errorf("%w: %s", apperr.ErrInvalidArgument, strings.Join(msgs, "; ")))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' must not be empty", field)
	case "min", "max":
		return fmt.Sprintf("'%s' length must respect %s=%s", field, fe.Tag(), fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("'%s' must be %s %s", field, fe.Tag(), fe.Param())
	case "email":
		return fmt.Sprintf("'%s' is not a valid email address", field)
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", field, fe.Param())
	case "username", "password":
		return fmt.Sprintf("Check your '%s' for using forbidden characters (@%%?#<>/) and cyrillic.", field)
	case "birthdate":
		return fmt.Sprintf("'%s' must be between 1890-01-01 and today", field)
	default:
		return fmt.Sprintf("'%s' failed '%s' validation", field, fe.Tag())
	}
}
