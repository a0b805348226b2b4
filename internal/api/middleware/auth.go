// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"musiccatalog/internal/lib/response"
	"musiccatalog/internal/token"
)

type contextKey string

const userIDKey contextKey = "userID"

// Auth validates the bearer access token and stores the user ID in the
// request context.
func Auth(tokens *token.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Error(w, http.StatusUnauthorized, "Authorization header must be in the format 'Bearer {token}'")
				return
			}

			userID, err := tokens.ValidateAccess(parts[1])
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user ID stored by Auth.
func UserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

// WithUserID is a test helper to seed an authenticated context.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
