package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Revoke(ctx, "a", now.Add(time.Hour)))
	require.NoError(t, m.Revoke(ctx, "old", now.Add(-time.Minute)))

	ok, err := m.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.IsRevoked(ctx, "old")
	assert.False(t, ok)
	ok, _ = m.IsRevoked(ctx, "b")
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	ok, _ = m.IsRevoked(ctx, "a")
	assert.False(t, ok, "entry outlives its token")

	require.NoError(t, m.Revoke(ctx, "c", now.Add(time.Minute)))
	assert.NotContains(t, m.entries, "a")
}

func TestNewPicksBackend(t *testing.T) {
	_, ok := New(nil).(*Memory)
	assert.True(t, ok)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	r, ok := New(rdb).(*Redis)
	require.True(t, ok)
	assert.Equal(t, "revoked:abc", r.key("abc"))
}

func TestRedisSkipsExpiredAndEmpty(t *testing.T) {
	// Neither call reaches the server.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	r := NewRedis(rdb, "revoked")
	ctx := context.Background()

	assert.NoError(t, r.Revoke(ctx, "x", time.Now().Add(-time.Second)))
	assert.NoError(t, r.Revoke(ctx, "", time.Now().Add(time.Hour)))
	ok, err := r.IsRevoked(ctx, "")
	assert.NoError(t, err)
	assert.False(t, ok)
}
