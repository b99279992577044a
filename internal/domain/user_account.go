package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

type ActivityStatus string

const (
	ActivityAthletic ActivityStatus = "Athletic"
	ActivityActive   ActivityStatus = "Active"
	ActivityModerate ActivityStatus = "Moderate"
	ActivityReduced  ActivityStatus = "Reduced"
	ActivityInactive ActivityStatus = "Inactive"
)

var (
	sexValues      = []Sex{SexMale, SexFemale}
	activityValues = []ActivityStatus{ActivityAthletic, ActivityActive, ActivityModerate, ActivityReduced, ActivityInactive}
)

// UnmarshalJSON accepts either the name ("Female") or the ordinal (1).
func (s *Sex) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, sexValues)
	if err != nil {
		return fmt.Errorf("sex: %w", err)
	}
	*s = v
	return nil
}

func (a *ActivityStatus) UnmarshalJSON(b []byte) error {
	v, err := decodeEnum(b, activityValues)
	if err != nil {
		return fmt.Errorf("sports activity: %w", err)
	}
	*a = v
	return nil
}

func decodeEnum[T ~string](b []byte, values []T) (T, error) {
	var ordinal int
	if err := json.Unmarshal(b, &ordinal); err == nil {
		if ordinal < 0 || ordinal >= len(values) {
			return "", fmt.Errorf("ordinal %d out of range", ordinal)
		}
		return values[ordinal], nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return "", err
	}
	for _, v := range values {
		if strings.EqualFold(string(v), name) {
			return v, nil
		}
	}
	// Unknown names are kept so validation can report them.
	return T(name), nil
}

type UserAccount struct {
	ID                   string         `gorm:"primaryKey;size:36" json:"id"`
	FirstName            string         `gorm:"size:100;not null" json:"firstName"`
	LastName             string         `gorm:"size:100;not null" json:"lastName"`
	Patronymic           *string        `gorm:"size:100" json:"patronymic,omitempty"`
	DateOfBirth          time.Time      `gorm:"not null" json:"dateOfBirth"`
	ResidencePlace       string         `gorm:"size:300;not null" json:"residencePlace"`
	Sex                  Sex            `gorm:"size:16;not null" json:"sex"`
	Height               *float64       `json:"height,omitempty"`
	Weight               *float64       `json:"weight,omitempty"`
	SportsActivity       ActivityStatus `gorm:"size:16;not null" json:"sportsActivity"`
	DateOfRegistration   time.Time      `gorm:"not null" json:"dateOfRegistration"`
	ClassificationNumber *string        `gorm:"size:60" json:"classificationNumber,omitempty"`
	IsStatusVerify       bool           `gorm:"not null;default:false" json:"isStatusVerify"`
	UserCredentialsID    string         `gorm:"uniqueIndex;size:36;not null" json:"userCredentialsId"`
	UpdatedAt            time.Time      `json:"-"`
}

// IsNameChanged reports whether any of the name fields differ between a and b.
func (a *UserAccount) IsNameChanged(b *UserAccount) bool {
	return a.FirstName != b.FirstName || a.LastName != b.LastName || deref(a.Patronymic) != deref(b.Patronymic)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
