package service

import (
	"context"
	"time"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
)

type AuthServiceInterface interface {
	IsUserExisting(ctx context.Context, userName string) (bool, error)
	Register(ctx context.Context, in *RegistrationInput) (string, error)
	Authenticate(ctx context.Context, userName, password string) (bool, error)
	Login(ctx context.Context, userName, password string) (*LoginResult, error)
	IssueRefreshToken(ctx context.Context, userName string) (*RefreshResult, error)
	RefreshForCredential(ctx context.Context, credentialID string) (*RefreshResult, error)
	ElevateToTrainer(ctx context.Context, credentialID string) error
}

type CredentialServiceInterface interface {
	List(ctx context.Context) ([]domain.UserCredential, error)
	ListPaged(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.UserCredential], error)
	Get(ctx context.Context, id string) (*domain.UserCredential, error)
	Roles(ctx context.Context, id string) ([]string, error)
	RoleNamesForUser(ctx context.Context, userName string) ([]string, error)
	Account(ctx context.Context, id string) (*domain.UserAccount, error)
	Delete(ctx context.Context, id string, mode domain.DeleteType) error
}

type AccountServiceInterface interface {
	Get(ctx context.Context, id string) (*domain.UserAccount, error)
	Update(ctx context.Context, id string, in *AccountUpdateInput) error
}

// TokenIssuer mints the access and refresh tokens handed out at login.
type TokenIssuer interface {
	MintAccessToken(userName string) (string, error)
	MintRefreshToken() (string, time.Time, error)
}
