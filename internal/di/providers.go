package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/workout-auth-service/internal/app"
	"github.com/sandeepkv93/workout-auth-service/internal/config"
	"github.com/sandeepkv93/workout-auth-service/internal/database"
	"github.com/sandeepkv93/workout-auth-service/internal/events"
	"github.com/sandeepkv93/workout-auth-service/internal/health"
	"github.com/sandeepkv93/workout-auth-service/internal/http/handler"
	"github.com/sandeepkv93/workout-auth-service/internal/http/middleware"
	"github.com/sandeepkv93/workout-auth-service/internal/http/router"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"
	"github.com/sandeepkv93/workout-auth-service/internal/repository"
	"github.com/sandeepkv93/workout-auth-service/internal/security"
	"github.com/sandeepkv93/workout-auth-service/internal/service"
	"github.com/sandeepkv93/workout-auth-service/internal/validation"
)

const (
	rateLimitRedisPrefix  = "rl"
	loginGuardRedisPrefix = "login_guard"
	roleCacheRedisPrefix  = "role_cache"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewCredentialRepository,
	repository.NewAccountRepository,
	repository.NewTxRunner,
)

var SecuritySet = wire.NewSet(
	provideTokenMinter,
	wire.Bind(new(service.TokenIssuer), new(*security.TokenMinter)),
	wire.Bind(new(middleware.AccessTokenParser), new(*security.TokenMinter)),
)

var EventSet = wire.NewSet(provideAccountPublisher)

var GuardSet = wire.NewSet(provideLoginGuard)

var ServiceSet = wire.NewSet(
	service.NewAuthService,
	service.NewCredentialService,
	service.NewAccountService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.CredentialServiceInterface), new(*service.CredentialService)),
	wire.Bind(new(service.AccountServiceInterface), new(*service.AccountService)),
	provideRoleCacheStore,
	provideRoleResolver,
)

var HTTPSet = wire.NewSet(
	validation.New,
	handler.NewAuthHandler,
	handler.NewCredentialHandler,
	handler.NewAccountHandler,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	logger := observability.InitLogger(cfg, runtime.LoggerProvider)
	slog.SetDefault(logger)
	return logger
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	admin := database.BootstrapAdmin{UserName: cfg.BootstrapAdminUserName, Password: cfg.BootstrapAdminPassword}
	if err := database.Seed(db, admin); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideTokenMinter(cfg *config.Config) *security.TokenMinter {
	return security.NewTokenMinter(security.TokenSettings{
		Key:                 cfg.JWTKey,
		ValidIssuer:         cfg.JWTValidIssuer,
		ValidAudience:       cfg.JWTValidAudience,
		Expires:             cfg.JWTExpires,
		RefreshTokenExpires: cfg.JWTRefreshTokenExpires,
	})
}

func provideAccountPublisher(cfg *config.Config, redisClient redis.UniversalClient, logger *slog.Logger) events.AccountPublisher {
	if cfg.AccountEventsEnabled && redisClient != nil {
		return events.NewRedisAccountPublisher(redisClient, cfg.AccountEventsChannel)
	}
	return events.NewLogAccountPublisher(logger)
}

func provideLoginGuard(cfg *config.Config, redisClient redis.UniversalClient) service.LoginGuard {
	if !cfg.LoginGuardEnabled {
		return service.NewNoopLoginGuard()
	}
	policy := service.LoginGuardPolicy{
		FreeAttempts: cfg.LoginGuardFreeAttempts,
		BaseDelay:    cfg.LoginGuardBaseDelay,
		Multiplier:   cfg.LoginGuardMultiplier,
		MaxDelay:     cfg.LoginGuardMaxDelay,
		ResetWindow:  cfg.LoginGuardResetWindow,
	}
	if redisClient != nil {
		return service.NewRedisLoginGuard(redisClient, loginGuardRedisPrefix, policy)
	}
	return service.NewInMemoryLoginGuard(policy)
}

// provideRoleCacheStore returns nil when ROLE_CACHE_TTL disables the cache.
func provideRoleCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.RoleCacheStore {
	if cfg.RoleCacheTTL <= 0 {
		return nil
	}
	if redisClient != nil {
		return service.NewRedisRoleCacheStore(redisClient, roleCacheRedisPrefix)
	}
	return service.NewInMemoryRoleCacheStore()
}

func provideRoleResolver(cfg *config.Config, credentials *service.CredentialService, store service.RoleCacheStore) middleware.RoleResolver {
	if store == nil || cfg.RoleCacheTTL <= 0 {
		return credentials
	}
	return service.NewCachedRoleResolver(store, credentials, cfg.RoleCacheTTL)
}

func failureMode(cfg *config.Config) middleware.FailureMode {
	if cfg.RateLimitFailOpen {
		return middleware.FailOpen
	}
	return middleware.FailClosed
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.GlobalRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, rateLimitRedisPrefix)
		return middleware.NewDistributedRateLimiter(redisLimiter, "api", cfg.APIRateLimitPerMin, time.Minute, failureMode(cfg)).Middleware()
	}
	return middleware.NewRateLimiter("api", cfg.APIRateLimitPerMin, time.Minute).Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.AuthRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, rateLimitRedisPrefix)
		return middleware.NewDistributedRateLimiter(redisLimiter, "auth", cfg.AuthRateLimitPerMin, time.Minute, failureMode(cfg)).Middleware()
	}
	return middleware.NewRateLimiter("auth", cfg.AuthRateLimitPerMin, time.Minute).Middleware()
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	credentialHandler *handler.CredentialHandler,
	accountHandler *handler.AccountHandler,
	tokenParser middleware.AccessTokenParser,
	roleResolver middleware.RoleResolver,
	globalRateLimiter router.GlobalRateLimiterFunc,
	authRateLimiter router.AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		CredentialHandler: credentialHandler,
		AccountHandler:    accountHandler,
		TokenParser:       tokenParser,
		RoleResolver:      roleResolver,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		BodyLimitBytes:    cfg.RequestBodyLimitBytes,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		GlobalRateLimiter: globalRateLimiter,
		AuthRateLimiter:   authRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, health.NewDBChecker(db), health.NewRedisChecker(redisClient))
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient)
}
