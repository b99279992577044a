package repository

import (
	"context"

	"gorm.io/gorm"
)

// Stores groups the repositories bound to one database handle.
type Stores struct {
	Credentials CredentialRepository
	Accounts    AccountRepository
	Roles       RoleRepository
}

func NewStores(db *gorm.DB) Stores {
	return Stores{
		Credentials: NewCredentialRepository(db),
		Accounts:    NewAccountRepository(db),
		Roles:       NewRoleRepository(db),
	}
}

// TxRunner runs fn against stores bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

type GormTxRunner struct{ db *gorm.DB }

func NewTxRunner(db *gorm.DB) TxRunner { return &GormTxRunner{db: db} }

func (r *GormTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStores(tx))
	})
}
