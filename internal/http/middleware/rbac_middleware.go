package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sandeepkv93/workout-auth-service/internal/apperr"
	"github.com/sandeepkv93/workout-auth-service/internal/http/response"
	"github.com/sandeepkv93/workout-auth-service/internal/observability"
)

// RoleResolver looks up the role names held by the credential owning userName.
type RoleResolver interface {
	RoleNamesForUser(ctx context.Context, userName string) ([]string, error)
}

// RequireRole must run after AuthMiddleware.
func RequireRole(resolver RoleResolver, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				observability.RecordAuthorizationDecision(r.Context(), role, "missing_claims")
				response.Error(w, r, http.StatusUnauthorized, "Access token is missing.", "The route requires an authenticated caller.")
				return
			}
			roles, err := resolver.RoleNamesForUser(r.Context(), claims.Subject)
			switch {
			case errors.Is(err, apperr.ErrNotFound):
				observability.RecordAuthorizationDecision(r.Context(), role, "unknown_subject")
				response.Error(w, r, http.StatusUnauthorized, "Access token is invalid.", "The token subject no longer exists.")
				return
			case err != nil:
				observability.RecordAuthorizationDecision(r.Context(), role, "error")
				slog.ErrorContext(r.Context(), "role lookup failed", "user_name", claims.Subject, "error", err)
				response.Error(w, r, http.StatusInternalServerError, "Internal server error.", "Roles of the caller could not be resolved.")
				return
			}
			for _, have := range roles {
				if strings.EqualFold(have, role) {
					observability.RecordAuthorizationDecision(r.Context(), role, "allowed")
					next.ServeHTTP(w, r)
					return
				}
			}
			observability.RecordAuthorizationDecision(r.Context(), role, "forbidden")
			response.Error(w, r, http.StatusForbidden, "Access denied.", "The route requires the "+role+" role.")
		})
	}
}
