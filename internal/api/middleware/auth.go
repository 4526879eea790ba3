// Package middleware provides HTTP middleware for authentication and request
// tracing.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chayma544/BookMate-back/internal/api/shared"
	"github.com/chayma544/BookMate-back/internal/domain"
	"github.com/chayma544/BookMate-back/internal/service"
	"github.com/chayma544/BookMate-back/internal/service/auth"
)

// AuthMiddleware validates bearer tokens and attaches the authenticated
// actor to the request context.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates middleware backed by the given token validator.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate rejects requests without a valid access token. On success the
// actor derived from the token claims is stored in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Authentication required", auth.ErrMissingToken)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Invalid authorization header format", auth.ErrInvalidToken)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"Invalid or expired token", err)
			return
		}

		actor := service.Actor{
			ID:    claims.UserID,
			Admin: claims.Role == domain.RoleAdmin,
		}
		ctx := context.WithValue(r.Context(), shared.ActorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor retrieves the authenticated actor placed in the context by
// Authenticate. The boolean is false when the request never passed through
// the middleware.
func GetActor(ctx context.Context) (service.Actor, bool) {
	actor, ok := ctx.Value(shared.ActorContextKey).(service.Actor)
	return actor, ok
}
