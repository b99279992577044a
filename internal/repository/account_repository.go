package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
)

type AccountRepository interface {
	Creator[domain.UserAccount]
	Reader[domain.UserAccount]
	Updater[domain.UserAccount]
	Deleter[domain.UserAccount]
	FindCredential(ctx context.Context, accountID string) (*domain.UserCredential, error)
}

type GormAccountRepository struct {
	gormStore[domain.UserAccount]
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &GormAccountRepository{gormStore[domain.UserAccount]{db: db, entity: "user_account"}}
}

func (r *GormAccountRepository) FindCredential(ctx context.Context, accountID string) (*domain.UserCredential, error) {
	account, err := r.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	var c domain.UserCredential
	if err := r.db.WithContext(ctx).Preload("Roles").Where("id = ?", account.UserCredentialsID).First(&c).Error; err != nil {
		return nil, translateError(err, "user_credential", "find")
	}
	return &c, nil
}
