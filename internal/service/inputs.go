package service

import (
	"time"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
)

// RegistrationInput is the registration body: credential fields plus the
// profile that becomes the linked account.
type RegistrationInput struct {
	UserName             string                `json:"userName" validate:"required,min=5,max=40,username"`
	Email                string                `json:"email" validate:"required,email"`
	Password             string                `json:"password" validate:"required,min=6,max=50,password"`
	PhoneNumber          string                `json:"phoneNumber" validate:"required"`
	FirstName            string                `json:"firstName" validate:"required,min=2,max=100"`
	LastName             string                `json:"lastName" validate:"required,min=2,max=100"`
	Patronymic           *string               `json:"patronymic" validate:"omitnil,min=2,max=100"`
	DateOfBirth          time.Time             `json:"dateOfBirth" validate:"required,birthdate"`
	ResidencePlace       string                `json:"residencePlace" validate:"required,min=10,max=300"`
	Sex                  domain.Sex            `json:"sex" validate:"oneof=Male Female"`
	Height               *float64              `json:"height" validate:"omitnil,gte=50,lte=270"`
	Weight               *float64              `json:"weight" validate:"omitnil,gte=20,lte=500"`
	SportsActivity       domain.ActivityStatus `json:"sportsActivity" validate:"oneof=Athletic Active Moderate Reduced Inactive"`
	ClassificationNumber *string               `json:"classificationNumber" validate:"omitnil,min=8,max=60"`
}

type LoginInput struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AccountUpdateInput replaces the editable part of an account.
type AccountUpdateInput struct {
	FirstName            string                `json:"firstName" validate:"required,min=2,max=100"`
	LastName             string                `json:"lastName" validate:"required,min=2,max=100"`
	Patronymic           *string               `json:"patronymic" validate:"omitnil,min=2,max=100"`
	DateOfBirth          time.Time             `json:"dateOfBirth" validate:"required,birthdate"`
	ResidencePlace       string                `json:"residencePlace" validate:"required,min=10,max=300"`
	Sex                  domain.Sex            `json:"sex" validate:"oneof=Male Female"`
	Height               *float64              `json:"height" validate:"omitnil,gte=50,lte=270"`
	Weight               *float64              `json:"weight" validate:"omitnil,gte=20,lte=500"`
	SportsActivity       domain.ActivityStatus `json:"sportsActivity" validate:"oneof=Athletic Active Moderate Reduced Inactive"`
	ClassificationNumber *string               `json:"classificationNumber" validate:"omitnil,min=8,max=60"`
}

type LoginResult struct {
	AccessToken                string    `json:"accessToken"`
	RefreshToken               string    `json:"refreshToken"`
	RefreshTokenExpirationTime time.Time `json:"refreshTokenExpirationTime"`
}

type RefreshResult struct {
	RefreshToken               string    `json:"refreshToken"`
	RefreshTokenExpirationTime time.Time `json:"refreshTokenExpirationTime"`
}

func (in *RegistrationInput) account(id, credentialID string, registeredAt time.Time) *domain.UserAccount {
	return &domain.UserAccount{
		ID:                   id,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Patronymic:           in.Patronymic,
		DateOfBirth:          in.DateOfBirth.UTC(),
		ResidencePlace:       in.ResidencePlace,
		Sex:                  in.Sex,
		Height:               in.Height,
		Weight:               in.Weight,
		SportsActivity:       in.SportsActivity,
		DateOfRegistration:   registeredAt,
		ClassificationNumber: in.ClassificationNumber,
		UserCredentialsID:    credentialID,
	}
}

// apply copies the editable fields onto a copy of current. Registration date,
// verification status and the owning credential are kept.
func (in *AccountUpdateInput) apply(current *domain.UserAccount) *domain.UserAccount {
	next := *current
	next.FirstName = in.FirstName
	next.LastName = in.LastName
	next.Patronymic = in.Patronymic
	next.DateOfBirth = in.DateOfBirth.UTC()
	next.ResidencePlace = in.ResidencePlace
	next.Sex = in.Sex
	next.Height = in.Height
	next.Weight = in.Weight
	next.SportsActivity = in.SportsActivity
	next.ClassificationNumber = in.ClassificationNumber
	return &next
}
