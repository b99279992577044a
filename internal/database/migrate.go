package database

import (
	"context"
	"time"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	}()

	if err := db.SetupJoinTable(&domain.UserCredential{}, "Roles", &domain.UserRole{}); err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return err
	}
	err := db.AutoMigrate(models()...)
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "success")
	return nil
}

func models() []any {
	return []any{
		&domain.Role{},
		&domain.UserCredential{},
		&domain.UserAccount{},
		&domain.UserRole{},
	}
}

// TableNames lists the tables Migrate manages, in creation order.
func TableNames(db *gorm.DB) []string {
	names := make([]string, 0, len(models()))
	for _, m := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			continue
		}
		names = append(names, stmt.Schema.Table)
	}
	return names
}

// MissingTables reports managed tables that do not exist yet.
func MissingTables(db *gorm.DB) []string {
	var missing []string
	for _, m := range models() {
		if db.Migrator().HasTable(m) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err == nil {
			missing = append(missing, stmt.Schema.Table)
		}
	}
	return missing
}
