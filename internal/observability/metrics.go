package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/workout-auth-service/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

type AppMetrics struct {
	authLoginCounter             metric.Int64Counter
	authRegistrationCounter      metric.Int64Counter
	authRefreshCounter           metric.Int64Counter
	authElevationCounter         metric.Int64Counter
	authReqDuration              metric.Float64Histogram
	loginGuardCounter            metric.Int64Counter
	loginGuardCooldown           metric.Float64Histogram
	accessTokenValidationCounter metric.Int64Counter
	credentialDeleteCounter      metric.Int64Counter
	accountUpdateCounter         metric.Int64Counter
	accountEventsPublished       metric.Int64Counter
	rateLimitDecisionCounter     metric.Int64Counter
	middlewareValidationCounter  metric.Int64Counter
	authorizationCounter         metric.Int64Counter
	roleCacheCounter             metric.Int64Counter
	healthCheckResultCounter     metric.Int64Counter
	healthCheckDuration          metric.Float64Histogram
	databaseStartupCounter       metric.Int64Counter
	databaseStartupDuration      metric.Float64Histogram
	toolCommandRuns              metric.Int64Counter
	toolCommandDuration          metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "auth.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint, "interval", cfg.OTELMetricsExportInterval.String())
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var firstErr error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("create counter %s: %w", name, err)
		}
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithUnit("s"), metric.WithDescription(desc))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("create histogram %s: %w", name, err)
		}
		return h
	}

	m := &AppMetrics{
		authLoginCounter:             counter("auth.login.attempts", "Login attempts by outcome"),
		authRegistrationCounter:      counter("auth.registration.attempts", "Registration attempts by outcome"),
		authRefreshCounter:           counter("auth.refresh.attempts", "Refresh token issuance attempts by outcome"),
		authElevationCounter:         counter("auth.trainer_elevation.events", "Trainer elevation attempts by outcome"),
		authReqDuration:              seconds("auth.request.duration", "Duration of auth endpoint requests in seconds"),
		loginGuardCounter:            counter("auth.login_guard.events", "Failed login guard checks, failures and resets"),
		loginGuardCooldown:           seconds("auth.login_guard.cooldown", "Cooldown imposed after failed logins in seconds"),
		accessTokenValidationCounter: counter("auth.access_token.validation.events", "Bearer token validation results"),
		credentialDeleteCounter:      counter("credential.delete.events", "Credential deletions by mode and outcome"),
		accountUpdateCounter:         counter("account.update.events", "Account updates by outcome"),
		accountEventsPublished:       counter("account.events.published", "Account update messages handed to the broker"),
		rateLimitDecisionCounter:     counter("http.rate_limit.decisions", "Rate limiter decisions"),
		middlewareValidationCounter:  counter("http.middleware.validation.events", "CORS and body limit middleware outcomes"),
		authorizationCounter:         counter("http.authorization.decisions", "Role checks on protected routes"),
		roleCacheCounter:             counter("auth.role_cache.events", "Role lookups served by the role cache"),
		healthCheckResultCounter:     counter("health.check.results", "Readiness check results"),
		healthCheckDuration:          seconds("health.check.duration", "Readiness check duration in seconds"),
		databaseStartupCounter:       counter("database.startup.events", "Database connect, migrate and seed outcomes"),
		databaseStartupDuration:      seconds("database.startup.duration", "Database startup stage duration in seconds"),
		toolCommandRuns:              counter("tool.command.runs", "CLI tool command runs"),
		toolCommandDuration:          seconds("tool.command.duration", "CLI tool command duration in seconds"),
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

func currentMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func attrs(kv ...string) metric.MeasurementOption {
	out := make([]attribute.KeyValue, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, attribute.String(kv[i], kv[i+1]))
	}
	return metric.WithAttributes(out...)
}

func RecordAuthLogin(ctx context.Context, outcome string) {
	if m := currentMetrics(); m != nil {
		m.authLoginCounter.Add(ctx, 1, attrs("outcome", outcome))
	}
}

func RecordAuthRegistration(ctx context.Context, outcome string) {
	if m := currentMetrics(); m != nil {
		m.authRegistrationCounter.Add(ctx, 1, attrs("outcome", outcome))
	}
}

func RecordAuthRefresh(ctx context.Context, outcome string) {
	if m := currentMetrics(); m != nil {
		m.authRefreshCounter.Add(ctx, 1, attrs("outcome", outcome))
	}
}

func RecordTrainerElevation(ctx context.Context, outcome string) {
	if m := currentMetrics(); m != nil {
		m.authElevationCounter.Add(ctx, 1, attrs("outcome", outcome))
	}
}

func RecordAuthRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	if m := currentMetrics(); m != nil {
		m.authReqDuration.Record(ctx, duration.Seconds(), attrs("endpoint", endpoint, "status", status))
	}
}

func RecordLoginGuardEvent(ctx context.Context, action, outcome string) {
	if m := currentMetrics(); m != nil {
		m.loginGuardCounter.Add(ctx, 1, attrs("action", action, "outcome", outcome))
	}
}

func RecordLoginGuardCooldown(ctx context.Context, action string, cooldown time.Duration) {
	if m := currentMetrics(); m != nil {
		m.loginGuardCooldown.Record(ctx, cooldown.Seconds(), attrs("action", action))
	}
}

func RecordAccessTokenValidation(ctx context.Context, outcome string) {
	if m := currentMetrics(); m != nil {
		m.accessTokenValidationCounter.Add(ctx, 1, attrs("outcome", outcome))
	}
}

func RecordCredentialDelete(ctx context.Context, mode, outcome string) {
	if m := currentMetrics(); m != nil {
		m.credentialDeleteCounter.Add(ctx, 1, attrs("mode", mode, "outcome", outcome))
	}
}

func RecordAccountUpdate(ctx context.Context, outcome string) {
	if m := currentMetrics(); m != nil {
		m.accountUpdateCounter.Add(ctx, 1, attrs("outcome", outcome))
	}
}

func RecordAccountEventPublished(ctx context.Context, transport, outcome string) {
	if m := currentMetrics(); m != nil {
		m.accountEventsPublished.Add(ctx, 1, attrs("transport", transport, "outcome", outcome))
	}
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode string) {
	if m := currentMetrics(); m != nil {
		m.rateLimitDecisionCounter.Add(ctx, 1, attrs("scope", scope, "outcome", outcome, "mode", mode))
	}
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	if m := currentMetrics(); m != nil {
		m.middlewareValidationCounter.Add(ctx, 1, attrs("middleware", middleware, "outcome", outcome))
	}
}

func RecordAuthorizationDecision(ctx context.Context, role, outcome string) {
	if m := currentMetrics(); m != nil {
		m.authorizationCounter.Add(ctx, 1, attrs("role", role, "outcome", outcome))
	}
}

func RecordRoleCacheEvent(ctx context.Context, outcome string) {
	if m := currentMetrics(); m != nil {
		m.roleCacheCounter.Add(ctx, 1, attrs("outcome", outcome))
	}
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	if m := currentMetrics(); m != nil {
		m.healthCheckResultCounter.Add(ctx, 1, attrs("check", check, "outcome", outcome))
	}
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	if m := currentMetrics(); m != nil {
		m.healthCheckDuration.Record(ctx, duration.Seconds(), attrs("check", check))
	}
}

func RecordDatabaseStartupEvent(ctx context.Context, stage, outcome string) {
	if m := currentMetrics(); m != nil {
		m.databaseStartupCounter.Add(ctx, 1, attrs("stage", stage, "outcome", outcome))
	}
}

func RecordDatabaseStartupDuration(ctx context.Context, stage string, duration time.Duration) {
	if m := currentMetrics(); m != nil {
		m.databaseStartupDuration.Record(ctx, duration.Seconds(), attrs("stage", stage))
	}
}

func RecordToolCommandRun(ctx context.Context, tool, command, outcome string) {
	if m := currentMetrics(); m != nil {
		m.toolCommandRuns.Add(ctx, 1, attrs("tool", tool, "command", command, "outcome", outcome))
	}
}

func RecordToolCommandDuration(ctx context.Context, tool, command, outcome string, duration time.Duration) {
	if m := currentMetrics(); m != nil {
		m.toolCommandDuration.Record(ctx, duration.Seconds(), attrs("tool", tool, "command", command, "outcome", outcome))
	}
}
