package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/samber/oops"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/http/response"
)

const (
	msgIDEmpty         = "Id is empty."
	detailsIDEmpty     = "Searchable model cannot be found because id is empty."
	msgUserNotExists   = "User don't exists."
	msgNoUserWithID    = "There is no user with such id."
	msgUserExists      = "User already exists."
	msgLoginFailed     = "Authenticate was failed. Try another user name or password"
	detailsLoginFailed = "There can be few reasons. " +
		"User with entered data don't exists; " +
		"entered data are invalid (misspell); " +
		"entered data contains invalid syntax (validation rules were violated)."
	msgInvalidBody   = "Incoming model is invalid."
	msgInternalError = "Internal server error."
	detailsInternal  = "The request could not be completed because of an unexpected failure."
)

// failure is the message pair answered for one status code.
type failure struct {
	message string
	details string
}

// failures overrides the default message per status for one endpoint.
type failures map[int]failure

// writeError answers err with ErrorDetails. Client errors carry the error text
// as details; server errors are logged and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error, known failures) {
	status := apperr.HTTPStatus(err)
	f, ok := known[status]
	if !ok {
		f = failure{message: http.StatusText(status) + ".", details: clientDetails(err)}
		if status >= http.StatusInternalServerError {
			f = failure{message: msgInternalError, details: detailsInternal}
		}
	}
	if f.details == "" {
		f.details = clientDetails(err)
	}
	if status >= http.StatusInternalServerError {
		attrs := []any{"path", r.URL.Path, "kind", apperr.Kind(err), "error", err}
		if oopsErr, ok := oops.AsOops(err); ok {
			attrs = append(attrs, "code", oopsErr.Code())
		}
		slog.ErrorContext(r.Context(), "request failed", attrs...)
	}
	response.Error(w, r, status, f.message, f.details)
}

// clientDetails drops the kind prefix so only the cause reaches the client.
func clientDetails(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if _, after, ok := strings.Cut(msg, apperr.ErrInvalidArgument.Error()+": "); ok {
		return after
	}
	return msg
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		return oops.Code(apperr.CodeInvalidArgument).Wrap(fmt.Errorf("%w: %w", apperr.ErrInvalidArgument, err))
	}
	return nil
}
