package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/workout-auth-service/internal/domain"
	"github.com/sandeepkv93/workout-auth-service/internal/health"
	"github.com/sandeepkv93/workout-auth-service/internal/http/handler"
	"github.com/sandeepkv93/workout-auth-service/internal/http/middleware"
	"github.com/sandeepkv93/workout-auth-service/internal/http/response"
)

const defaultBodyLimit = 1 << 20

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	CredentialHandler *handler.CredentialHandler
	AccountHandler    *handler.AccountHandler
	TokenParser       middleware.AccessTokenParser
	RoleResolver      middleware.RoleResolver
	CORSOrigins       []string
	BodyLimitBytes    int64
	AuthRateLimitRPM  int
	APIRateLimitRPM   int
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	bodyLimit := dep.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(bodyLimit))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter("api", dep.APIRateLimitRPM, time.Minute).Middleware())
	}

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter("auth", dep.AuthRateLimitRPM, time.Minute).Middleware()
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "Resource not found.", "No route matches "+r.Method+" "+r.URL.Path+".")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "Method not allowed.", r.Method+" is not supported on "+r.URL.Path+".")
	})

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready, results := dep.Readiness.Ready(r.Context())
		if results == nil {
			results = []health.CheckResult{}
		}
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "unready"
		}
		response.JSON(w, r, status, map[string]any{"status": state, "checks": results})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/authentication", func(r chi.Router) {
			r.Use(authLimiter)
			r.Post("/login", dep.AuthHandler.Login)
			r.Post("/registration", dep.AuthHandler.Registration)
			r.Post("/refresh/{userCredentialsId}", dep.AuthHandler.Refresh)
		})

		r.Route("/userCredentials", func(r chi.Router) {
			r.Get("/", dep.CredentialHandler.List)
			r.Get("/{id}", dep.CredentialHandler.Get)
			r.Get("/{id}/roles", dep.CredentialHandler.Roles)
			r.Get("/{id}/account", dep.CredentialHandler.Account)
			r.Delete("/{id}", dep.CredentialHandler.Delete)
			r.With(
				middleware.AuthMiddleware(dep.TokenParser),
				middleware.RequireRole(dep.RoleResolver, domain.RoleAdmin),
			).Post("/{id}/trainer", dep.CredentialHandler.ElevateToTrainer)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{accountId}", dep.AccountHandler.Get)
			r.Put("/{accountId}", dep.AccountHandler.Update)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
