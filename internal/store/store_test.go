package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/feedlens/internal/config"
	"github.com/kiranshivaraju/feedlens/internal/store"
	"github.com/kiranshivaraju/feedlens/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// startPostgres runs a throwaway Postgres container and returns its DSN.
// Integration tests are skipped under -short.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("feedlens_test"),
		postgres.WithUsername("feedlens"),
		postgres.WithPassword("feedlens"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// setupTestDB returns a migrated pool with four connections.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := startPostgres(t)
	require.NoError(t, store.RunMigrations(dsn, migrationsDir()))

	pool, err := store.Connect(context.Background(), config.DatabaseConfig{
		URL:             dsn,
		MaxOpenConns:    4,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type fixture struct {
	ctx    context.Context
	store  *store.PostgresStore
	tenant uuid.UUID
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewPostgresStore(setupTestDB(t))
	tenant, err := s.GetDefaultTenant(context.Background())
	require.NoError(t, err)
	return &fixture{
		ctx:    context.Background(),
		store:  s,
		tenant: tenant.ID,
		now:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// seed inserts a live key named name with the given prefix and scopes.
func (f *fixture) seed(t *testing.T, name, prefix string, scopes ...string) *models.APIKey {
	t.Helper()
	k := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  f.tenant,
		Name:      name,
		KeyHash:   "$2a$10$" + name,
		KeyPrefix: prefix,
		Scopes:    scopes,
		CreatedAt: f.now,
		UpdatedAt: f.now,
	}
	require.NoError(t, f.store.CreateAPIKey(f.ctx, k))
	return k
}

func TestConnect_ClampsIdleToOpen(t *testing.T) {
	pool := setupTestDB(t)

	assert.Equal(t, int32(4), pool.Config().MaxConns)
	assert.Equal(t, int32(4), pool.Config().MinConns)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := store.Connect(context.Background(), config.DatabaseConfig{URL: "not-a-valid-url"})
	require.Error(t, err)
}

func TestDefaultTenantSeeded(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.Ping(f.ctx))
	tenant, err := f.store.GetDefaultTenant(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "default", tenant.Name)
	assert.Equal(t, f.tenant, tenant.ID)
}

func TestAPIKeys(t *testing.T) {
	f := newFixture(t)

	t.Run("lookup by prefix", func(t *testing.T) {
		k := f.seed(t, "reporting", "flk_look", "analyze", "admin")

		got, err := f.store.GetAPIKeyByPrefix(f.ctx, "flk_look")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, k.ID, got[0].ID)
		assert.Equal(t, []string{"analyze", "admin"}, got[0].Scopes)
		assert.Nil(t, got[0].LastUsedAt)
		assert.False(t, got[0].Revoked())
	})

	t.Run("unknown prefix", func(t *testing.T) {
		got, err := f.store.GetAPIKeyByPrefix(f.ctx, "flk_none")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("last used", func(t *testing.T) {
		k := f.seed(t, "dashboard", "flk_used", "analyze")
		require.NoError(t, f.store.UpdateAPIKeyLastUsed(f.ctx, k.ID))

		got, err := f.store.GetAPIKeyByPrefix(f.ctx, "flk_used")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].LastUsedAt)
	})

	t.Run("duplicate id", func(t *testing.T) {
		k := f.seed(t, "original", "flk_dupi", "analyze")
		clone := *k
		clone.Name = "clone"
		assert.ErrorIs(t, f.store.CreateAPIKey(f.ctx, &clone), store.ErrDuplicateKey)
	})

	t.Run("duplicate live name", func(t *testing.T) {
		f.seed(t, "ingest-bot", "flk_nam1", "analyze")
		dup := &models.APIKey{
			ID: uuid.New(), TenantID: f.tenant, Name: "ingest-bot", KeyHash: "x", KeyPrefix: "flk_nam2",
			Scopes: []string{"analyze"}, CreatedAt: f.now, UpdatedAt: f.now,
		}
		assert.ErrorIs(t, f.store.CreateAPIKey(f.ctx, dup), store.ErrDuplicateKey)
	})

	t.Run("revoke", func(t *testing.T) {
		k := f.seed(t, "temporary", "flk_revk", "analyze")
		require.NoError(t, f.store.RevokeAPIKey(f.ctx, k.ID, f.tenant))

		got, err := f.store.GetAPIKeyByPrefix(f.ctx, "flk_revk")
		require.NoError(t, err)
		assert.Empty(t, got)

		assert.ErrorIs(t, f.store.RevokeAPIKey(f.ctx, k.ID, f.tenant), store.ErrNotFound)

		// The name is free again once revoked.
		f.seed(t, "temporary", "flk_rev2", "analyze")
	})

	t.Run("revoke other tenant", func(t *testing.T) {
		k := f.seed(t, "tenant-bound", "flk_tent", "analyze")
		assert.ErrorIs(t, f.store.RevokeAPIKey(f.ctx, k.ID, uuid.New()), store.ErrNotFound)
	})

	t.Run("revoke unknown", func(t *testing.T) {
		assert.ErrorIs(t, f.store.RevokeAPIKey(f.ctx, uuid.New(), f.tenant), store.ErrNotFound)
	})
}

func TestListAPIKeys(t *testing.T) {
	f := newFixture(t)
	names := []string{"oldest", "middle", "newest"}
	for i, name := range names {
		scopes := []string{"analyze"}
		if name == "oldest" {
			scopes = append(scopes, "admin")
		}
		k := &models.APIKey{
			ID: uuid.New(), TenantID: f.tenant, Name: name, KeyHash: "h-" + name,
			KeyPrefix: "flk_lst" + name[:1], Scopes: scopes,
			CreatedAt: f.now.Add(time.Duration(i) * time.Second), UpdatedAt: f.now,
		}
		require.NoError(t, f.store.CreateAPIKey(f.ctx, k))
	}
	revoked := f.seed(t, "gone", "flk_gone", "admin")
	require.NoError(t, f.store.RevokeAPIKey(f.ctx, revoked.ID, f.tenant))

	tests := []struct {
		name      string
		filter    store.KeyFilter
		wantNames []string
		wantTotal int
	}{
		{"all newest first", store.KeyFilter{}, []string{"newest", "middle", "oldest"}, 3},
		{"second page", store.KeyFilter{Page: 2, Limit: 2}, []string{"oldest"}, 3},
		{"past the end", store.KeyFilter{Page: 5, Limit: 2}, nil, 3},
		{"admin scope", store.KeyFilter{Scope: "admin"}, []string{"oldest"}, 1},
		{"foreign tenant", store.KeyFilter{TenantID: uuid.New()}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := tt.filter
			if filter.TenantID == uuid.Nil {
				filter.TenantID = f.tenant
			}
			keys, total, err := f.store.ListAPIKeys(f.ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			var got []string
			for _, k := range keys {
				got = append(got, k.Name)
			}
			assert.Equal(t, tt.wantNames, got)
		})
	}
}

func TestKeyFilter_Normalize(t *testing.T) {
	f := store.KeyFilter{Page: -1, Limit: 500}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, store.MaxPageLimit, f.Limit)
	assert.Equal(t, 0, f.Offset())

	f = store.KeyFilter{Page: 3}.Normalize()
	assert.Equal(t, store.DefaultPageLimit, f.Limit)
	assert.Equal(t, 2*store.DefaultPageLimit, f.Offset())
}

func TestRunMigrations_Idempotent(t *testing.T) {
	dsn := startPostgres(t)

	require.NoError(t, store.RunMigrations(dsn, migrationsDir()))
	require.NoError(t, store.RunMigrations(dsn, migrationsDir()))
}

func TestRunMigrations_BadDir(t *testing.T) {
	err := store.RunMigrations("postgres://u:p@127.0.0.1:1/db?sslmode=disable", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
