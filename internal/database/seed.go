package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"
	"github.com/sandeepkv93/workout-auth-service/internal/security"
)

// BootstrapAdmin describes an optional administrator credential created on seed.
type BootstrapAdmin struct {
	UserName string
	Password string
}

type SeedReport struct {
	CreatedRoles   int  `json:"created_roles"`
	CreatedAdmin   bool `json:"created_admin"`
	BoundAdminRole bool `json:"bound_admin_role"`
	Noop           bool `json:"noop"`
}

func Seed(db *gorm.DB, admin BootstrapAdmin) error {
	_, err := SeedSync(db, admin)
	return err
}

// SeedSync inserts the fixed role set and, when configured, the bootstrap
// administrator. Rows that already exist are left untouched.
func SeedSync(db *gorm.DB, admin BootstrapAdmin) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "seed", time.Since(start))
	}()

	report, err := seed(db, admin)
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "seed", "error")
		return nil, err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "seed", "success")
	return report, nil
}

func seed(db *gorm.DB, admin BootstrapAdmin) (*SeedReport, error) {
	report := &SeedReport{}
	for _, role := range domain.DefaultRoles() {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&role)
		if res.Error != nil {
			return nil, fmt.Errorf("seed role %s: %w", role.Name, res.Error)
		}
		if res.RowsAffected > 0 {
			report.CreatedRoles++
		}
	}

	userName := strings.TrimSpace(admin.UserName)
	if userName != "" {
		cred, created, err := ensureAdminCredential(db, userName, admin.Password)
		if err != nil {
			return nil, err
		}
		report.CreatedAdmin = created

		link := domain.UserRole{UserCredentialID: cred.ID, RoleID: domain.RoleAdminID}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link)
		if res.Error != nil {
			return nil, fmt.Errorf("bind admin role: %w", res.Error)
		}
		report.BoundAdminRole = res.RowsAffected > 0
	}

	report.Noop = report.CreatedRoles == 0 && !report.CreatedAdmin && !report.BoundAdminRole
	return report, nil
}

func ensureAdminCredential(db *gorm.DB, userName, password string) (*domain.UserCredential, bool, error) {
	var existing domain.UserCredential
	err := db.Where("normalized_user_name = ?", domain.NormalizeUserName(userName)).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	if password == "" {
		return nil, false, fmt.Errorf("bootstrap admin password is required to create %q", userName)
	}
	salt, err := security.NewSalt()
	if err != nil {
		return nil, false, err
	}
	hash, err := security.HashPassword(password, salt)
	if err != nil {
		return nil, false, err
	}
	cred := &domain.UserCredential{
		ID:                 uuid.NewString(),
		UserName:           userName,
		NormalizedUserName: domain.NormalizeUserName(userName),
		PasswordHash:       hash,
		PasswordSalt:       salt,
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cred).Error; err != nil {
			return err
		}
		return tx.Create(&domain.UserAccount{
			ID:                 uuid.NewString(),
			FirstName:          "Admin",
			LastName:           "Admin",
			DateOfBirth:        time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			ResidencePlace:     "Server room",
			Sex:                domain.SexMale,
			SportsActivity:     domain.ActivityModerate,
			DateOfRegistration: time.Now().UTC(),
			UserCredentialsID:  cred.ID,
		}).Error
	}); err != nil {
		return nil, false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	return cred, true, nil
}
