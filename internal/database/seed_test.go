package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/security"
)

func newSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeedSyncIsIdempotent(t *testing.T) {
	db := newSeedTestDB(t)

	first, err := SeedSync(db, BootstrapAdmin{})
	if err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if first.CreatedRoles != 3 || first.Noop {
		t.Fatalf("unexpected first report: %+v", first)
	}

	second, err := SeedSync(db, BootstrapAdmin{})
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if !second.Noop {
		t.Fatalf("expected noop on reseed, got %+v", second)
	}
}

func TestSeedSyncCreatesBootstrapAdmin(t *testing.T) {
	db := newSeedTestDB(t)

	report, err := SeedSync(db, BootstrapAdmin{UserName: "MagzyCode", Password: "Admin_Pass1"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !report.CreatedAdmin || !report.BoundAdminRole {
		t.Fatalf("expected admin creation, got %+v", report)
	}

	var admin domain.UserCredential
	if err := db.Preload("Roles").Preload("Account").Where("normalized_user_name = ?", "MAGZYCODE").First(&admin).Error; err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !security.VerifyPassword("Admin_Pass1", admin.PasswordSalt, admin.PasswordHash) {
		t.Fatal("expected admin password to verify")
	}
	if names := admin.RoleNames(); len(names) != 1 || names[0] != domain.RoleAdmin {
		t.Fatalf("unexpected admin roles: %v", names)
	}
	if admin.Account == nil {
		t.Fatal("expected admin account row")
	}

	again, err := SeedSync(db, BootstrapAdmin{UserName: "magzycode"})
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if !again.Noop {
		t.Fatalf("expected noop when admin exists, got %+v", again)
	}
}

func TestSeedSyncRequiresAdminPassword(t *testing.T) {
	db := newSeedTestDB(t)
	if _, err := SeedSync(db, BootstrapAdmin{UserName: "MagzyCode"}); err == nil {
		t.Fatal("expected error without bootstrap password")
	}
}
