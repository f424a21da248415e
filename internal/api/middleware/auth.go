package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/feedlens/internal/api/response"
	"github.com/kiranshivaraju/feedlens/internal/store"
)

const touchTimeout = 5 * time.Second

var (
	errMissingToken = errors.New("missing or invalid Authorization header")
	errMalformedKey = errors.New("invalid API key format")
	errUnknownKey   = errors.New("invalid API key")
)

// Auth provides authentication and scope-checking middleware.
type Auth struct {
	store store.Store
}

func NewAuth(s store.Store) *Auth {
	return &Auth{store: s}
}

// Authenticate resolves the Bearer token to a live API key and attaches the
// resulting Principal to the request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.resolve(r.Context(), bearerToken(r))
		switch {
		case err == nil:
		case errors.Is(err, errMissingToken), errors.Is(err, errMalformedKey), errors.Is(err, errUnknownKey):
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or missing API key",
				map[string]string{"reason": err.Error()})
			return
		default:
			slog.Error("api key lookup failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to validate API key", nil)
			return
		}

		go a.touch(p.KeyID)
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

func (a *Auth) resolve(ctx context.Context, raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, errMissingToken
	}
	prefix := KeyPrefix(raw)
	if prefix == "" {
		return Principal{}, errMalformedKey
	}

	candidates, err := a.store.GetAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		return Principal{}, err
	}
	for _, k := range candidates {
		if VerifyKey(k.KeyHash, raw) {
			return Principal{KeyID: k.ID, TenantID: k.TenantID, KeyPrefix: prefix, Scopes: k.Scopes}, nil
		}
	}
	return Principal{}, errUnknownKey
}

// touch records key usage outside the request lifecycle.
func (a *Auth) touch(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
	defer cancel()
	if err := a.store.UpdateAPIKeyLastUsed(ctx, id); err != nil {
		slog.Warn("update api key last_used_at", "key_id", id, "error", err)
	}
}

// RequireScope rejects principals lacking scope with 403.
func (a *Auth) RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, _ := PrincipalFrom(r.Context()); !p.HasScope(scope) {
				response.Error(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions",
					map[string]any{"required_scope": scope})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
