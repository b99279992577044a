package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/workout-auth-service/internal/database"
	"github.com/sandeepkv93/workout-auth-service/internal/domain"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
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

func newCredentialForTest(userName string) *domain.UserCredential {
	return &domain.UserCredential{
		ID:                      uuid.NewString(),
		UserName:                userName,
		NormalizedUserName:      domain.NormalizeUserName(userName),
		Email:                   userName + "@example.com",
		PhoneNumber:             "+375250000001",
		PasswordHash:            "hash",
		PasswordSalt:            "salt",
		RefreshTokenExpiredDate: time.Now().UTC(),
	}
}

func newAccountForTest(credentialID string) *domain.UserAccount {
	return &domain.UserAccount{
		ID:                 uuid.NewString(),
		FirstName:          "Alice",
		LastName:           "Smith",
		DateOfBirth:        time.Date(1995, 5, 30, 0, 0, 0, 0, time.UTC),
		ResidencePlace:     "Gomel, Pedchenko street 12",
		Sex:                domain.SexFemale,
		SportsActivity:     domain.ActivityActive,
		DateOfRegistration: time.Now().UTC(),
		UserCredentialsID:  credentialID,
	}
}
