package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	repogomock "github.com/sandeepkv93/workout-auth-service/internal/repository/gomock"
)

func storedAccount() *domain.UserAccount {
	return &domain.UserAccount{
		ID:                 uuid.NewString(),
		FirstName:          "Alice",
		LastName:           "Smith",
		DateOfBirth:        time.Date(1995, 5, 30, 0, 0, 0, 0, time.UTC),
		ResidencePlace:     "Gomel, Pedchenko street 12",
		Sex:                domain.SexFemale,
		SportsActivity:     domain.ActivityActive,
		DateOfRegistration: time.Date(2022, 7, 20, 13, 46, 3, 0, time.UTC),
		IsStatusVerify:     true,
		UserCredentialsID:  uuid.NewString(),
	}
}

func updateFrom(a *domain.UserAccount) *AccountUpdateInput {
	return &AccountUpdateInput{
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		DateOfBirth:    a.DateOfBirth,
		ResidencePlace: a.ResidencePlace,
		Sex:            a.Sex,
		SportsActivity: a.SportsActivity,
	}
}

func TestAccountServiceGetValidatesID(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewAccountService(repogomock.NewMockAccountRepository(ctrl), &recordingPublisher{}, discardLogger())

	for _, id := range []string{"", "not-a-uuid", uuid.Nil.String()} {
		_, err := svc.Get(context.Background(), id)
		assert.True(t, errors.Is(err, apperr.ErrInvalidArgument), "id %q: %v", id, err)
	}
}

func TestAccountServiceUpdatePreservesServerFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repogomock.NewMockAccountRepository(ctrl)
	pub := &recordingPublisher{}
	current := storedAccount()

	in := updateFrom(current)
	in.LastName = "Johnson"
	weight := 61.5
	in.Weight = &weight

	repo.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *domain.UserAccount) error {
		assert.Equal(t, current.ID, a.ID)
		assert.Equal(t, "Johnson", a.LastName)
		assert.Equal(t, current.DateOfRegistration, a.DateOfRegistration)
		assert.True(t, a.IsStatusVerify)
		assert.Equal(t, current.UserCredentialsID, a.UserCredentialsID)
		return nil
	})

	require.NoError(t, NewAccountService(repo, pub, discardLogger()).Update(context.Background(), current.ID, in))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, current.ID, pub.msgs[0].UpdationID)
	assert.Equal(t, "Johnson", pub.msgs[0].LastName)
	assert.True(t, pub.msgs[0].NameChanged)
}

func TestAccountServiceUpdatePublishesEvenWithoutRename(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repogomock.NewMockAccountRepository(ctrl)
	pub := &recordingPublisher{}
	current := storedAccount()

	in := updateFrom(current)
	in.ResidencePlace = "Minsk, Nezavisimosti avenue 4"
	repo.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, NewAccountService(repo, pub, discardLogger()).Update(context.Background(), current.ID, in))
	require.Len(t, pub.msgs, 1)
	assert.False(t, pub.msgs[0].NameChanged)
}

func TestAccountServiceUpdateSurvivesPublisherFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repogomock.NewMockAccountRepository(ctrl)
	pub := &recordingPublisher{err: errors.New("broker down")}
	current := storedAccount()

	repo.EXPECT().FindByID(gomock.Any(), current.ID).Return(current, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	assert.NoError(t, NewAccountService(repo, pub, discardLogger()).Update(context.Background(), current.ID, updateFrom(current)))
}

func TestAccountServiceUpdateMissingAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := repogomock.NewMockAccountRepository(ctrl)
	pub := &recordingPublisher{}
	id := uuid.NewString()
	repo.EXPECT().FindByID(gomock.Any(), id).Return(nil, apperr.ErrNotFound)

	err := NewAccountService(repo, pub, discardLogger()).Update(context.Background(), id, &AccountUpdateInput{})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Empty(t, pub.msgs)
}
