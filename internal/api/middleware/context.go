package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/google/uuid"
)

// Principal is the API key a request authenticated with.
type Principal struct {
	KeyID     uuid.UUID
	TenantID  uuid.UUID
	KeyPrefix string
	Scopes    []string
}

// HasScope reports whether the key was granted scope.
func (p Principal) HasScope(scope string) bool {
	return slices.Contains(p.Scopes, scope)
}

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal set by Authenticate, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// GetTenantID returns the tenant of the authenticated key.
func GetTenantID(r *http.Request) (uuid.UUID, bool) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	return p.TenantID, true
}
