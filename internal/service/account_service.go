package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/events"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
)

type AccountService struct {
	accounts  repository.AccountRepository
	publisher events.AccountPublisher
	logger    *slog.Logger
}

func NewAccountService(accounts repository.AccountRepository, publisher events.AccountPublisher, logger *slog.Logger) *AccountService {
	return &AccountService{accounts: accounts, publisher: publisher, logger: logger}
}

// Get loads an account by id. Account ids are UUIDs; anything else is rejected
// before touching the store.
func (s *AccountService) Get(ctx context.Context, id string) (*domain.UserAccount, error) {
	if err := checkAccountID(id); err != nil {
		return nil, err
	}
	return s.accounts.FindByID(ctx, id)
}

// Update replaces the editable fields and announces the change. A failed
// announcement is logged; the stored update stands.
func (s *AccountService) Update(ctx context.Context, id string, in *AccountUpdateInput) error {
	if in == nil {
		return invalidArgument("account update is empty")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	next := in.apply(current)
	if err := s.accounts.Update(ctx, next); err != nil {
		return err
	}

	msg := events.UpdateUserMessage{
		UpdationID:  next.ID,
		FirstName:   next.FirstName,
		LastName:    next.LastName,
		Patronymic:  next.Patronymic,
		NameChanged: current.IsNameChanged(next),
	}
	if err := s.publisher.PublishAccountUpdated(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "account update event not published", "account_id", next.ID, "error", err)
	}
	return nil
}

func checkAccountID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalidArgument("account id is empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil || parsed == uuid.Nil {
		return invalidArgument("account id is not a valid uuid")
	}
	return nil
}
