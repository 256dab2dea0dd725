package auth

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/devconnect/backend/internal/errors"
	"github.com/google/uuid"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserContext is the identity attached to the request context by Middleware.
type UserContext struct {
	UserID uuid.UUID
}

// Middleware is the auth gate for protected routes. It rejects requests with
// a missing, invalid or expired bearer token, and attaches the resolved user
// identity to the request context otherwise. It never touches any store.
func Middleware(authService *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := apperrors.GetRequestID(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("invalid authorization header format"))
				return
			}

			userID, err := authService.VerifyToken(parts[1])
			if err != nil {
				if err == ErrTokenExpired {
					apperrors.WriteError(w, requestID, apperrors.TokenExpired())
					return
				}
				apperrors.WriteError(w, requestID, apperrors.InvalidToken("invalid access token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, &UserContext{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the identity attached by Middleware, or nil.
func GetUserFromContext(ctx context.Context) *UserContext {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok {
		return nil
	}
	return user
}
