package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Session headers set by the storefront auth proxy in front of this service.
const (
	UserIDHeader    = "X-User-ID"
	UserEmailHeader = "X-User-Email"
)

// Identity is the signed-in shopper, if any
type Identity struct {
	UserID string
	Email  string
}

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by the Identity middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// IdentityMiddleware attaches the upstream session to the request context.
// Requests without a user id pass through anonymously.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithIdentity(r.Context(), Identity{
			UserID: userID,
			Email:  strings.TrimSpace(r.Header.Get(UserEmailHeader)),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
