package middleware

import (
	"context"
	"net/http"
	"strings"

	"daily-bonus-api/internal/service"
	"daily-bonus-api/pkg/apierror"

	"github.com/google/uuid"
)

// PlayerIDKey is the context key for the authenticated player's id.
const PlayerIDKey contextKey = "player_id"

// BearerTokenKey is the context key for the raw bearer token. The token is
// kept so the payout request can pass it through to the currency service.
const BearerTokenKey contextKey = "bearer_token"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Identity *service.IdentityService
	AdminKey string
}

// NewAuthMiddleware creates a player-authentication middleware with injected
// dependencies. Every authenticated request gets its bearer token resolved to
// a player id via the identity service before any bonus logic runs.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for health check endpoints
			if r.URL.Path == "/api/v1/health" || r.URL.Path == "/api/v1/ready" {
				next.ServeHTTP(w, r)
				return
			}

			// Admin endpoints authenticate with X-Admin-Key instead of a
			// player token (verified by the admin handler).
			if strings.HasPrefix(r.URL.Path, "/api/v1/admin") {
				if cfg.AdminKey != "" && r.Header.Get("X-Admin-Key") == cfg.AdminKey {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, apierror.Forbidden("Invalid or missing admin key"))
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, apierror.Unauthorized("Authorization header is missing"))
				return
			}

			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || token == "" {
				writeError(w, apierror.Unauthorized(`Authorization header missing "Bearer " prefix`))
				return
			}

			playerID, err := cfg.Identity.Resolve(r.Context(), token)
			if err != nil {
				writeError(w, apierror.Unauthorized("The provided token could not be used to authenticate the player"))
				return
			}

			ctx := context.WithValue(r.Context(), PlayerIDKey, playerID)
			ctx = context.WithValue(ctx, BearerTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetPlayerID retrieves the authenticated player id from request context.
func GetPlayerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(PlayerIDKey).(uuid.UUID)
	return id, ok
}

// GetBearerToken retrieves the raw bearer token from request context.
func GetBearerToken(ctx context.Context) string {
	if token, ok := ctx.Value(BearerTokenKey).(string); ok {
		return token
	}
	return ""
}
