package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type contextKey string

const userIDKey contextKey = "user_id"

// TokenValidator validates a bearer token and returns the embedded user ID
type TokenValidator interface {
	ValidateJWT(token string) (string, error)
}

// ActivityRecorder stamps a user's last activity time
type ActivityRecorder interface {
	TouchLastActive(ctx context.Context, userID string) error
}

// Auth creates a middleware for JWT authentication
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userID, err := validator.ValidateJWT(parts[1])
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSelf is the single ownership gate: the authenticated identity must
// match the user_id path parameter. Mounted once per self-only route group
// instead of comparing ids inside every handler.
func RequireSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pathID := chi.URLParam(r, "user_id")
		if pathID == "" || pathID != GetUserID(r.Context()) {
			respondError(w, "You cannot act on another user's resources", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Activity records the caller's last activity after each authenticated
// request, mirroring the login-activity touch on every endpoint
func Activity(recorder ActivityRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			if userID := GetUserID(r.Context()); userID != "" {
				if err := recorder.TouchLastActive(r.Context(), userID); err != nil {
					log.Error().Err(err).Str("user_id", userID).Msg("Failed to record user activity")
				}
			}
		})
	}
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// WithUserID returns a context carrying the authenticated user ID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"error":%q}`, message)
}
