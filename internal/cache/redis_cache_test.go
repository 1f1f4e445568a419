package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cyberguard/awareness-service/internal/progress"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	_ progress.Store = (*RedisStore)(nil)
	_ progress.Store = (*MemoryStore)(nil)
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, zap.NewNop(), DefaultKeyPrefix, 0)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "abc", `{"version":1}`))
	assert.True(t, mr.Exists(DefaultKeyPrefix+"abc"))

	value, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"version":1}`, value)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, ok, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, nil, "p:", time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v"))
	assert.Equal(t, time.Hour, mr.TTL("p:k"))

	mr.FastForward(2 * time.Hour)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_DeletePattern(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, zap.NewNop(), "p:", 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a1", "x"))
	require.NoError(t, store.Set(ctx, "a2", "x"))
	require.NoError(t, store.Set(ctx, "b1", "x"))

	n, err := store.DeletePattern(ctx, "a*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ := store.Get(ctx, "b1")
	assert.True(t, ok)
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, zap.NewNop(), "p:", 0)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v"))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}
