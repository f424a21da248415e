package cache_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/feedlens/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts one Redis container for the calling test and returns a
// cache connected to it.
func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "redis")
	require.NoError(t, err)

	rc, err := cache.NewRedisCache(endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return rc
}

// uniqueKey keeps subtests sharing a container independent.
func uniqueKey(prefix string) string {
	return prefix + ":" + uuid.NewString()[:8]
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, rc.Ping(ctx))
	})

	t.Run("set then get", func(t *testing.T) {
		key := uniqueKey("sentiment")
		require.NoError(t, rc.Set(ctx, key, []byte(`[{"label":"positive","score":0.9}]`), 10*time.Second))

		val, found, err := rc.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.JSONEq(t, `[{"label":"positive","score":0.9}]`, string(val))
	})

	t.Run("missing key", func(t *testing.T) {
		val, found, err := rc.Get(ctx, uniqueKey("absent"))
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, val)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		key := uniqueKey("expiring")
		require.NoError(t, rc.Set(ctx, key, []byte("temp"), time.Second))

		_, found, err := rc.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)

		time.Sleep(1500 * time.Millisecond)

		_, found, err = rc.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("counter increments", func(t *testing.T) {
		key := uniqueKey("ratelimit")
		for want := int64(1); want <= 3; want++ {
			got, err := rc.IncrWithExpiry(ctx, key, 10*time.Second)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("counter window is fixed", func(t *testing.T) {
		key := uniqueKey("ratelimit")

		_, err := rc.IncrWithExpiry(ctx, key, 2*time.Second)
		require.NoError(t, err)
		time.Sleep(1200 * time.Millisecond)

		// A later hit must not push the window out.
		n, err := rc.IncrWithExpiry(ctx, key, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		time.Sleep(1200 * time.Millisecond)

		n, err = rc.IncrWithExpiry(ctx, key, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n, "window should have reset")
	})
}

func TestRedisCache_Unreachable(t *testing.T) {
	rc, err := cache.NewRedisCache("redis://127.0.0.1:1")
	require.NoError(t, err)
	defer rc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, _, err = rc.Get(ctx, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get anything")
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := cache.NewRedisCache("http://not-redis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

// --- Key builders ---

func TestRateLimitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:flk_abcd", cache.RateLimitKey("flk_abcd"))
}

func TestSentimentKey(t *testing.T) {
	key := cache.SentimentKey("cardiffnlp/roberta", "great service")
	assert.True(t, strings.HasPrefix(key, "sentiment:cardiffnlp/roberta:"))
	assert.Len(t, strings.TrimPrefix(key, "sentiment:cardiffnlp/roberta:"), 64)
	assert.Equal(t, key, cache.SentimentKey("cardiffnlp/roberta", "great service"))
}

func TestKeyBuilders_NonColliding(t *testing.T) {
	keys := map[string]bool{
		cache.RateLimitKey("flk_abcd"):       true,
		cache.SentimentKey("m", "great"):     true,
		cache.SentimentKey("m", "Great"):     true,
		cache.SentimentKey("other", "great"): true,
	}
	assert.Len(t, keys, 4, "all keys should be unique")
}
