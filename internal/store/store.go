package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/feedlens/pkg/models"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
)

// Pagination bounds applied by ListAPIKeys.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Store persists tenants and API keys. Feedback and analysis results are
// never written here.
type Store interface {
	Ping(ctx context.Context) error
	GetDefaultTenant(ctx context.Context) (*models.Tenant, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, filter KeyFilter) ([]*models.APIKey, int, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

// KeyFilter selects one page of a tenant's live keys, newest first.
// An empty Scope matches every key. Page is 1-based.
type KeyFilter struct {
	TenantID uuid.UUID
	Scope    string
	Page     int
	Limit    int
}

// Normalize fills defaults and clamps Limit to MaxPageLimit.
func (f KeyFilter) Normalize() KeyFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	f.Limit = min(f.Limit, MaxPageLimit)
	return f
}

// Offset is the number of rows skipped before the page.
func (f KeyFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
