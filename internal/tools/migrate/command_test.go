package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/workout-auth-service/internal/config"
	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/tools/common"
)

// sharedSQLite keeps one handle open so the in-memory store survives the
// commands closing their own connections.
func sharedSQLite(t *testing.T) (*common.Options, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	open := func(*config.Config) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	}
	keep, err := open(nil)
	require.NoError(t, err)
	t.Cleanup(func() { common.CloseDB(keep) })

	t.Setenv("DATABASE_URL", "sqlite://test")
	t.Setenv("JWT_SETTINGS_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("OTEL_METRICS_ENABLED", "false")
	t.Setenv("OTEL_TRACING_ENABLED", "false")
	t.Setenv("OTEL_LOGS_ENABLED", "false")
	t.Setenv("BOOTSTRAP_ADMIN_USERNAME", "")

	opts := common.NewOptions()
	opts.OpenDB = open
	return opts, keep
}

func runCI(t *testing.T, opts *common.Options, args ...string) (common.CIResult, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(opts)
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"--ci", "--env-file", ""}, args...))
	err := cmd.ExecuteContext(context.Background())

	var res common.CIResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res), "output: %s", out.String())
	return res, err
}

func TestUpMigratesAndSeedsRoles(t *testing.T) {
	opts, db := sharedSQLite(t)

	res, err := runCI(t, opts, "up")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "migrate up", res.Title)
	assert.Contains(t, res.Details, "created roles: 3")

	var count int64
	require.NoError(t, db.Model(&domain.Role{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestStatusReportsPendingThenUpToDate(t *testing.T) {
	opts, _ := sharedSQLite(t)

	res, err := runCI(t, opts, "status")
	require.NoError(t, err)
	require.Len(t, res.Details, 3)
	assert.Contains(t, res.Details[2], "pending for")

	_, err = runCI(t, opts, "up")
	require.NoError(t, err)

	res, err = runCI(t, opts, "status")
	require.NoError(t, err)
	assert.Equal(t, "migrations: up to date", res.Details[2])
}

func TestSeedDryRunLeavesStoreUntouched(t *testing.T) {
	opts, db := sharedSQLite(t)
	_, err := runCI(t, opts, "up")
	require.NoError(t, err)
	require.NoError(t, db.Exec("DELETE FROM roles").Error)

	res, err := runCI(t, opts, "seed", "dry-run")
	require.NoError(t, err)
	assert.Contains(t, res.Details, "would create roles: 3")

	var count int64
	require.NoError(t, db.Model(&domain.Role{}).Count(&count).Error)
	assert.Zero(t, count)

	res, err = runCI(t, opts, "seed", "apply")
	require.NoError(t, err)
	assert.Contains(t, res.Details, "created roles: 3")
}

func TestSeedApplyCreatesBootstrapAdminFromFlag(t *testing.T) {
	opts, db := sharedSQLite(t)
	t.Setenv("BOOTSTRAP_ADMIN_PASSWORD", "Secret1!")
	_, err := runCI(t, opts, "up")
	require.NoError(t, err)

	res, err := runCI(t, opts, "seed", "apply", "--bootstrap-admin-username", "rootadmin")
	require.NoError(t, err)
	assert.Contains(t, res.Details, "bootstrap admin credential created")

	var cred domain.UserCredential
	require.NoError(t, db.Where("user_name = ?", "rootadmin").First(&cred).Error)
}

func TestFailureReportedInCIOutput(t *testing.T) {
	opts, _ := sharedSQLite(t)
	t.Setenv("JWT_SETTINGS_KEY", "short")

	res, err := runCI(t, opts, "plan")
	require.Error(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "JWT_SETTINGS_KEY")
}
