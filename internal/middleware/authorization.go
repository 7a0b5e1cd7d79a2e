package middleware

import (
	"net/http"

	"calcosnqn/internal/auth"

	"go.uber.org/zap"
)

// RequireAdmin ensures the authenticated identity carries the admin role.
// Failures answer 401 rather than 403 so the storefront treats a stale
// session and a missing one the same way.
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := auth.Role(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if role != "admin" {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("role", role),
				)
				RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
