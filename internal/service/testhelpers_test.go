package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/workout-auth-service/internal/database"
	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/events"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
	"github.com/sandeepkv93/workout-auth-service/internal/security"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newServiceDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, database.BootstrapAdmin{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func testMinter() *security.TokenMinter {
	return security.NewTokenMinter(security.TokenSettings{
		Key:                 "0123456789abcdef0123456789abcdef",
		ValidIssuer:         "workout-auth-service",
		ValidAudience:       "workout-global",
		Expires:             "60",
		RefreshTokenExpires: "7",
	})
}

func newAuthServiceForTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := newServiceDBForTest(t)
	svc := NewAuthService(repository.NewCredentialRepository(db), repository.NewTxRunner(db), testMinter(), nil, discardLogger())
	return svc, db
}

func registrationForTest(userName, password string) *RegistrationInput {
	height := 172.0
	return &RegistrationInput{
		UserName:       userName,
		Email:          userName + "@example.com",
		Password:       password,
		PhoneNumber:    "+375250000001",
		FirstName:      "Alice",
		LastName:       "Smith",
		DateOfBirth:    time.Date(1995, 5, 30, 0, 0, 0, 0, time.UTC),
		ResidencePlace: "Gomel, Pedchenko street 12",
		Sex:            domain.SexFemale,
		Height:         &height,
		SportsActivity: domain.ActivityActive,
	}
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []events.UpdateUserMessage
	err  error
}

func (p *recordingPublisher) PublishAccountUpdated(_ context.Context, msg events.UpdateUserMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}
