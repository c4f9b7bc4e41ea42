package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/leadvault/backend/internal/errors"
	"github.com/leadvault/backend/internal/logger"
)

type contextKey string

const UserContextKey contextKey = "user"

// UserContext is what the gate attaches to an accepted request: the
// subject plus the presented token and its expiry, which logout needs to
// compute the blacklist TTL. No other claim is exposed downstream.
type UserContext struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// Middleware rejects requests without a currently valid, non-revoked
// access token. Every failure mode collapses into the same generic
// unauthorized response so callers learn nothing about why.
func Middleware(authService *Service) func(http.Handler) http.Handler {
	log := logger.Default().WithComponent("auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := apperrors.GetRequestID(r.Context())

			token, ok := bearerToken(r)
			if !ok {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("unauthorized"))
				return
			}

			userCtx, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				// The true reason stays in the server log.
				log.Debug(r.Context(), "authentication rejected", map[string]interface{}{
					"reason": err.Error(),
				})
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("unauthorized"))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, userCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated user attached by the
// middleware, or nil on an unauthenticated request.
func GetUserFromContext(ctx context.Context) *UserContext {
	user, ok := ctx.Value(UserContextKey).(*UserContext)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
