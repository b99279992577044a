package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/workout-auth-service/internal/database"
	"github.com/sandeepkv93/workout-auth-service/internal/events"
	"github.com/sandeepkv93/workout-auth-service/internal/health"
	"github.com/sandeepkv93/workout-auth-service/internal/http/handler"
	"github.com/sandeepkv93/workout-auth-service/internal/http/response"
	"github.com/sandeepkv93/workout-auth-service/internal/http/router"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
	"github.com/sandeepkv93/workout-auth-service/internal/security"
	"github.com/sandeepkv93/workout-auth-service/internal/service"
	"github.com/sandeepkv93/workout-auth-service/internal/validation"
)

const (
	testJWTKey         = "integration-signing-key-0123456789abcdef"
	adminUserName      = "rootadmin"
	adminPassword      = "Admin#Pass1"
	accountsChannel    = "workout.account.updated"
	loginFailedMessage = "Authenticate was failed. Try another user name or password"
)

type testEnv struct {
	baseURL string
	client  *http.Client
	db      *gorm.DB
	minter  *security.TokenMinter
}

type testEnvOptions struct {
	redis         redis.UniversalClient
	authRateLimit int
	loginGuard    service.LoginGuard
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithOptions(t, testEnvOptions{})
}

func newTestEnvWithOptions(t *testing.T, opts testEnvOptions) *testEnv {
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
	if err := database.Seed(db, database.BootstrapAdmin{UserName: adminUserName, Password: adminPassword}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	minter := security.NewTokenMinter(security.TokenSettings{
		Key:                 testJWTKey,
		ValidIssuer:         "workout-auth-service",
		ValidAudience:       "workout-global",
		Expires:             "60",
		RefreshTokenExpires: "7",
	})

	var publisher events.AccountPublisher = events.NewLogAccountPublisher(log)
	if opts.redis != nil {
		publisher = events.NewRedisAccountPublisher(opts.redis, accountsChannel)
	}

	credentials := repository.NewCredentialRepository(db)
	authSvc := service.NewAuthService(credentials, repository.NewTxRunner(db), minter, nil, log)
	credentialSvc := service.NewCredentialService(credentials, nil)
	accountSvc := service.NewAccountService(repository.NewAccountRepository(db), publisher, log)
	v := validation.New()

	authRateLimit := opts.authRateLimit
	if authRateLimit == 0 {
		authRateLimit = 1000
	}
	h := router.NewRouter(router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authSvc, opts.loginGuard, v),
		CredentialHandler: handler.NewCredentialHandler(credentialSvc, authSvc),
		AccountHandler:    handler.NewAccountHandler(accountSvc, v),
		TokenParser:       minter,
		RoleResolver:      credentialSvc,
		CORSOrigins:       []string{"http://localhost:3000"},
		AuthRateLimitRPM:  authRateLimit,
		APIRateLimitRPM:   1000,
		Readiness:         health.NewProbeRunner(0, health.NewDBChecker(db), health.NewRedisChecker(opts.redis)),
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &testEnv{baseURL: srv.URL, client: srv.Client(), db: db, minter: minter}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %T from %s: %v", v, raw, err)
	}
	return v
}

func registrationBody(userName, password string) map[string]any {
	return map[string]any{
		"userName":       userName,
		"email":          userName + "@example.com",
		"password":       password,
		"phoneNumber":    "+15550100",
		"firstName":      "Alice",
		"lastName":       "Liddell",
		"dateOfBirth":    "1992-04-12T00:00:00Z",
		"residencePlace": "Oxford, United Kingdom",
		"sex":            "Female",
		"height":         168.0,
		"sportsActivity": "Active",
	}
}

// register creates a user and returns its credential id.
func (e *testEnv) register(t *testing.T, userName, password string) string {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/authentication/registration", registrationBody(userName, password), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status=%d body=%s", userName, resp.StatusCode, raw)
	}
	return decode[string](t, raw)
}

func (e *testEnv) login(t *testing.T, userName, password string) service.LoginResult {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/authentication/login", map[string]string{
		"userName": userName,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status=%d body=%s", userName, resp.StatusCode, raw)
	}
	return decode[service.LoginResult](t, raw)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func errorDetails(t *testing.T, raw []byte) response.ErrorDetails {
	t.Helper()
	return decode[response.ErrorDetails](t, raw)
}
