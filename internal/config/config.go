package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// MinJWTKeyLen is the smallest HS256 signing key accepted at startup, in bytes.
const MinJWTKeyLen = 32

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	// JwtSettings. Expires is minutes and RefreshTokenExpires days, kept as raw text.
	JWTKey                 string
	JWTValidIssuer         string
	JWTValidAudience       string
	JWTExpires             string
	JWTRefreshTokenExpires string

	BootstrapAdminUserName string
	BootstrapAdminPassword string

	CORSAllowedOrigins    []string
	RequestBodyLimitBytes int64

	AuthRateLimitPerMin   int
	APIRateLimitPerMin    int
	RateLimitRedisEnabled bool
	RateLimitFailOpen     bool

	LoginGuardEnabled      bool
	LoginGuardFreeAttempts int
	LoginGuardBaseDelay    time.Duration
	LoginGuardMultiplier   float64
	LoginGuardMaxDelay     time.Duration
	LoginGuardResetWindow  time.Duration

	RoleCacheTTL time.Duration

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AccountEventsEnabled bool
	AccountEventsChannel string

	ReadinessProbeTimeout        time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	redisEnabled := getEnvBool("REDIS_ENABLED", false)

	cfg := &Config{
		Env:                    env,
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		JWTKey:                 os.Getenv("JWT_SETTINGS_KEY"),
		JWTValidIssuer:         getEnv("JWT_SETTINGS_VALID_ISSUER", "workout-auth-service"),
		JWTValidAudience:       getEnv("JWT_SETTINGS_VALID_AUDIENCE", "workout-global"),
		JWTExpires:             getEnv("JWT_SETTINGS_EXPIRES", "60"),
		JWTRefreshTokenExpires: getEnv("JWT_SETTINGS_REFRESH_TOKEN_EXPIRES", "7"),
		BootstrapAdminUserName: strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_USERNAME")),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		CORSAllowedOrigins:     splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RequestBodyLimitBytes:  int64(getEnvInt("REQUEST_BODY_LIMIT_BYTES", 1<<20)),
		AuthRateLimitPerMin:    getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:     getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		RateLimitRedisEnabled:  getEnvBool("RATE_LIMIT_REDIS_ENABLED", redisEnabled),
		RateLimitFailOpen:      getEnvBool("RATE_LIMIT_FAIL_OPEN", isLocalLikeEnv(env)),
		LoginGuardEnabled:      getEnvBool("AUTH_LOGIN_GUARD_ENABLED", true),
		LoginGuardFreeAttempts: getEnvInt("AUTH_LOGIN_GUARD_FREE_ATTEMPTS", 5),
		LoginGuardMultiplier:   getEnvFloat("AUTH_LOGIN_GUARD_MULTIPLIER", 2),
		RedisEnabled:           redisEnabled,
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getEnvInt("REDIS_DB", 0),
		AccountEventsEnabled:   getEnvBool("ACCOUNT_EVENTS_ENABLED", redisEnabled),
		AccountEventsChannel:   getEnv("ACCOUNT_EVENTS_CHANNEL", "workout.account.updated"),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "workout-auth-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"AUTH_LOGIN_GUARD_BASE_DELAY", "2s", &cfg.LoginGuardBaseDelay},
		{"AUTH_LOGIN_GUARD_MAX_DELAY", "5m", &cfg.LoginGuardMaxDelay},
		{"AUTH_LOGIN_GUARD_RESET_WINDOW", "30m", &cfg.LoginGuardResetWindow},
		{"ROLE_CACHE_TTL", "30s", &cfg.RoleCacheTTL},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTKey) < MinJWTKeyLen {
		errs = append(errs, fmt.Sprintf("JWT_SETTINGS_KEY must be at least %d bytes", MinJWTKeyLen))
	}
	if c.JWTValidIssuer == "" {
		errs = append(errs, "JWT_SETTINGS_VALID_ISSUER is required")
	}
	if c.JWTValidAudience == "" {
		errs = append(errs, "JWT_SETTINGS_VALID_AUDIENCE is required")
	}
	if !isTTLCount(c.JWTExpires, time.Minute) {
		errs = append(errs, "JWT_SETTINGS_EXPIRES must be a positive number of minutes")
	}
	if !isTTLCount(c.JWTRefreshTokenExpires, 24*time.Hour) {
		errs = append(errs, "JWT_SETTINGS_REFRESH_TOKEN_EXPIRES must be a positive number of days")
	}
	if c.BootstrapAdminUserName != "" && c.BootstrapAdminPassword == "" {
		errs = append(errs, "BOOTSTRAP_ADMIN_PASSWORD is required when BOOTSTRAP_ADMIN_USERNAME is set")
	}
	if c.RequestBodyLimitBytes <= 0 {
		errs = append(errs, "REQUEST_BODY_LIMIT_BYTES must be > 0")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.LoginGuardEnabled {
		if c.LoginGuardFreeAttempts < 0 {
			errs = append(errs, "AUTH_LOGIN_GUARD_FREE_ATTEMPTS must be >= 0")
		}
		if c.LoginGuardBaseDelay <= 0 || c.LoginGuardMaxDelay < c.LoginGuardBaseDelay {
			errs = append(errs, "AUTH_LOGIN_GUARD_BASE_DELAY must be > 0 and <= AUTH_LOGIN_GUARD_MAX_DELAY")
		}
		if c.LoginGuardMultiplier < 1 {
			errs = append(errs, "AUTH_LOGIN_GUARD_MULTIPLIER must be >= 1")
		}
		if c.LoginGuardResetWindow <= 0 {
			errs = append(errs, "AUTH_LOGIN_GUARD_RESET_WINDOW must be > 0")
		}
	}
	if c.RoleCacheTTL < 0 {
		errs = append(errs, "ROLE_CACHE_TTL must be >= 0")
	}
	if (c.RateLimitRedisEnabled || c.AccountEventsEnabled) && !c.RedisEnabled {
		errs = append(errs, "REDIS_ENABLED=true is required for redis rate limiting and account events")
	}
	if c.RedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	if c.AccountEventsEnabled && c.AccountEventsChannel == "" {
		errs = append(errs, "ACCOUNT_EVENTS_CHANNEL is required when ACCOUNT_EVENTS_ENABLED=true")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout <= 0 || c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if c.ShutdownObservabilityTimeout <= 0 || c.ShutdownObservabilityTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_OBSERVABILITY_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if !isLocalLikeEnv(c.Env) && c.RateLimitFailOpen {
		errs = append(errs, "RATE_LIMIT_FAIL_OPEN is only allowed in local environments")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// isTTLCount reports whether v is a positive count of unit that fits in a time.Duration.
func isTTLCount(v string, unit time.Duration) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && f > 0 && f < float64(math.MaxInt64)/float64(unit)
}

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
