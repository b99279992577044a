package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/domain"
)

func TestAccountRepositoryLinkedLookups(t *testing.T) {
	ctx := context.Background()
	db := newRepositoryDBForTest(t)
	creds := NewCredentialRepository(db)
	accounts := NewAccountRepository(db)

	c := newCredentialForTest("alice")
	require.NoError(t, creds.Create(ctx, c))
	a := newAccountForTest(c.ID)
	require.NoError(t, accounts.Create(ctx, a))

	linked, err := creds.FindAccount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, linked.ID)

	owner, err := accounts.FindCredential(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, owner.ID)

	_, err = creds.FindAccount(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestAccountRepositoryOnePerCredential(t *testing.T) {
	ctx := context.Background()
	db := newRepositoryDBForTest(t)
	creds := NewCredentialRepository(db)
	accounts := NewAccountRepository(db)

	c := newCredentialForTest("alice")
	require.NoError(t, creds.Create(ctx, c))
	require.NoError(t, accounts.Create(ctx, newAccountForTest(c.ID)))

	err := accounts.Create(ctx, newAccountForTest(c.ID))
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)
}

func TestAccountRepositoryRejectsSoftDelete(t *testing.T) {
	ctx := context.Background()
	db := newRepositoryDBForTest(t)
	creds := NewCredentialRepository(db)
	accounts := NewAccountRepository(db)
	c := newCredentialForTest("alice")
	require.NoError(t, creds.Create(ctx, c))
	a := newAccountForTest(c.ID)
	require.NoError(t, accounts.Create(ctx, a))

	err := accounts.Delete(ctx, a, domain.DeleteSoft)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	require.NoError(t, accounts.Delete(ctx, a, domain.DeleteHard))
	all, err := accounts.List(ctx, ListOptions{ReadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTxRunnerRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := newRepositoryDBForTest(t)
	runner := NewTxRunner(db)
	boom := errors.New("boom")

	err := runner.InTx(ctx, func(ctx context.Context, stores Stores) error {
		if err := stores.Credentials.Create(ctx, newCredentialForTest("alice")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = NewCredentialRepository(db).FindByUserName(ctx, "alice")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	roles, err := NewRoleRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}
