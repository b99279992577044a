package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/workout-auth-service/internal/database"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) *DBChecker {
	return &DBChecker{db: db}
}

func (c *DBChecker) Name() string { return "db" }

// Check pings the store and fails while credential, account or role tables
// are missing, so an unmigrated database never reports ready.
func (c *DBChecker) Check(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}
	if missing := database.MissingTables(c.db.WithContext(ctx)); len(missing) > 0 {
		return fmt.Errorf("schema incomplete: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker returns nil when redis is disabled so the runner skips it.
func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
