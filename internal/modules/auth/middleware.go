package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/soko-labs/storefront-backend/internal/apperr"
	"github.com/soko-labs/storefront-backend/internal/httpx"
)

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

type contextKey struct{}

// FromContext returns the authenticated identity, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// RequireAuth rejects requests without a valid bearer token before any
// business logic runs. On success the caller identity is placed on the
// request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.Error(w, r, apperr.Auth("missing bearer credential"))
				return
			}

			claims, err := ParseToken(token, secret)
			if err != nil {
				httpx.Error(w, r, apperr.Auth("invalid or expired credential"))
				return
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				httpx.Error(w, r, apperr.Auth("invalid credential subject"))
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, Identity{UserID: userID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces the admin role claim. There is deliberately no
// fallback that admits other authenticated users.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok {
			httpx.Error(w, r, apperr.Auth("missing bearer credential"))
			return
		}
		if id.Role != RoleAdmin {
			httpx.JSON(w, http.StatusForbidden, httpx.ErrorBody{Error: "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
