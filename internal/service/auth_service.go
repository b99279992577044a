package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
	"github.com/sandeepkv93/workout-auth-service/internal/security"
)

// ErrUserExists is returned by Register for a taken username. It matches
// apperr.ErrConflict.
var ErrUserExists = fmt.Errorf("%w: user already exists", apperr.ErrConflict)

type AuthService struct {
	credentials repository.CredentialRepository
	tx          repository.TxRunner
	tokens      TokenIssuer
	roleCache   RoleCacheStore
	logger      *slog.Logger
	now         func() time.Time
}

func NewAuthService(
	credentials repository.CredentialRepository,
	tx repository.TxRunner,
	tokens TokenIssuer,
	roleCache RoleCacheStore,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		credentials: credentials,
		tx:          tx,
		tokens:      tokens,
		roleCache:   roleCache,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) IsUserExisting(ctx context.Context, userName string) (bool, error) {
	if strings.TrimSpace(userName) == "" {
		return false, invalidArgument("user name is empty")
	}
	_, err := s.credentials.FindByUserName(ctx, userName)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, apperr.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Register creates the credential, its default role and the linked account in
// one transaction and returns the new credential id. The existence check is a
// fast path; the unique index on the normalized username decides races.
func (s *AuthService) Register(ctx context.Context, in *RegistrationInput) (_ string, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.register")
	defer func() { observability.EndSpan(span, err) }()

	if in == nil {
		return "", invalidArgument("registration info is empty")
	}
	exists, err := s.IsUserExisting(ctx, in.UserName)
	if err != nil {
		return "", err
	}
	if exists {
		return "", oops.Code(apperr.CodeConflict).With("user_name", in.UserName).Wrap(ErrUserExists)
	}

	salt, err := security.NewSalt()
	if err != nil {
		return "", err
	}
	hash, err := security.HashPassword(in.Password, salt)
	if err != nil {
		return "", err
	}

	now := s.now()
	cred := &domain.UserCredential{
		ID:                      uuid.NewString(),
		UserName:                strings.TrimSpace(in.UserName),
		NormalizedUserName:      domain.NormalizeUserName(in.UserName),
		Email:                   strings.TrimSpace(in.Email),
		PhoneNumber:             strings.TrimSpace(in.PhoneNumber),
		PasswordHash:            hash,
		PasswordSalt:            salt,
		RefreshTokenExpiredDate: now,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		if err := stores.Credentials.Create(ctx, cred); err != nil {
			return err
		}
		if err := stores.Credentials.AddRole(ctx, cred.ID, domain.RoleUser); err != nil {
			return err
		}
		return stores.Accounts.Create(ctx, in.account(uuid.NewString(), cred.ID, now))
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return "", oops.Code(apperr.CodeConflict).With("user_name", in.UserName).Wrap(fmt.Errorf("%w: %w", ErrUserExists, err))
		}
		return "", err
	}
	s.logger.InfoContext(ctx, "user registered", "credential_id", cred.ID)
	return cred.ID, nil
}

// Authenticate reports whether password matches the stored hash. An unknown
// username is a mismatch, not an error.
func (s *AuthService) Authenticate(ctx context.Context, userName, password string) (bool, error) {
	cred, err := s.credentials.FindByUserName(ctx, userName)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return security.VerifyPassword(password, cred.PasswordSalt, cred.PasswordHash), nil
}

func (s *AuthService) Login(ctx context.Context, userName, password string) (_ *LoginResult, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.login")
	defer func() { observability.EndSpan(span, err) }()

	ok, err := s.Authenticate(ctx, userName, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, oops.Code(apperr.CodeUnauthorized).With("user_name", userName).Wrap(apperr.ErrUnauthorized)
	}
	access, err := s.tokens.MintAccessToken(userName)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(ctx, userName)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:                access,
		RefreshToken:               refresh.RefreshToken,
		RefreshTokenExpirationTime: refresh.RefreshTokenExpirationTime,
	}, nil
}

// IssueRefreshToken mints a refresh token for userName and stores it on the
// credential. A missing user is ErrNotFound.
func (s *AuthService) IssueRefreshToken(ctx context.Context, userName string) (*RefreshResult, error) {
	if strings.TrimSpace(userName) == "" {
		return nil, invalidArgument("user name is empty")
	}
	cred, err := s.credentials.FindByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	return s.rotateRefreshToken(ctx, cred)
}

// RefreshForCredential is IssueRefreshToken addressed by credential id.
func (s *AuthService) RefreshForCredential(ctx context.Context, credentialID string) (*RefreshResult, error) {
	if strings.TrimSpace(credentialID) == "" {
		return nil, invalidArgument("credential id is empty")
	}
	cred, err := s.credentials.FindByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	return s.rotateRefreshToken(ctx, cred)
}

func (s *AuthService) rotateRefreshToken(ctx context.Context, cred *domain.UserCredential) (*RefreshResult, error) {
	token, expires, err := s.tokens.MintRefreshToken()
	if err != nil {
		return nil, err
	}
	cred.RefreshToken = &token
	cred.RefreshTokenExpiredDate = expires
	if err := s.credentials.Update(ctx, cred); err != nil {
		return nil, err
	}
	return &RefreshResult{RefreshToken: token, RefreshTokenExpirationTime: expires}, nil
}

// ElevateToTrainer grants the Trainer role and marks the linked account as verified.
func (s *AuthService) ElevateToTrainer(ctx context.Context, credentialID string) (err error) {
	ctx, span := observability.StartSpan(ctx, "auth.elevate_to_trainer", attribute.String("credential.id", credentialID))
	defer func() { observability.EndSpan(span, err) }()

	if strings.TrimSpace(credentialID) == "" {
		return invalidArgument("credential id is empty")
	}
	var userName string
	err = s.tx.InTx(ctx, func(ctx context.Context, stores repository.Stores) error {
		cred, err := stores.Credentials.FindByID(ctx, credentialID)
		if err != nil {
			return err
		}
		userName = cred.UserName
		if err := stores.Credentials.AddRole(ctx, credentialID, domain.RoleTrainer); err != nil {
			return err
		}
		account, err := stores.Credentials.FindAccount(ctx, credentialID)
		if err != nil {
			return err
		}
		account.IsStatusVerify = true
		return stores.Accounts.Update(ctx, account)
	})
	if err != nil {
		return err
	}
	evictRoles(ctx, s.roleCache, userName)
	return nil
}

func invalidArgument(msg string) error {
	return oops.Code(apperr.CodeInvalidArgument).Wrap(fmt.Errorf("%w: %s", apperr.ErrInvalidArgument, msg))
}
