package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a stored credential for the HTTP API. Only the bcrypt hash of the
// raw key is kept; KeyPrefix holds its first eight characters for lookup.
// Handlers render keys through their own views, never this struct.
type APIKey struct {
	ID         uuid.UUID  `db:"id"`
	TenantID   uuid.UUID  `db:"tenant_id"`
	Name       string     `db:"name"`
	KeyHash    string     `db:"key_hash"`
	KeyPrefix  string     `db:"key_prefix"`
	Scopes     []string   `db:"scopes"`
	LastUsedAt *time.Time `db:"last_used_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// Revoked reports whether the key has been soft-deleted.
func (k *APIKey) Revoked() bool { return k.DeletedAt != nil }
