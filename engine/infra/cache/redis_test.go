package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howzat/howzat/engine/core"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client)
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisStore(t *testing.T) {
	t.Run("Should round-trip values with TTL", func(t *testing.T) {
		mr, store := setupMiniredis(t)
		ctx := testContext(t)

		require.NoError(t, store.Set(ctx, "k", "v", TTLShort, time.Minute))
		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)

		mr.FastForward(2 * time.Minute)
		_, err = store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Should return not found for missing keys", func(t *testing.T) {
		_, store := setupMiniredis(t)
		_, err := store.Get(testContext(t), "absent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Should ping successfully while the server is up", func(t *testing.T) {
		_, store := setupMiniredis(t)
		assert.NoError(t, store.Ping(testContext(t)))
	})
}

func TestCacheWithRedisBackend(t *testing.T) {
	t.Run("Should serve fresh entries from Redis without refetching", func(t *testing.T) {
		_, store := setupMiniredis(t)
		c := New(store, DefaultConfig())
		ctx := testContext(t)

		var calls atomic.Int32
		fetch := func(context.Context) (core.Payload, error) {
			calls.Add(1)
			return core.Payload{"runs": "18426"}, nil
		}

		first, err := c.GetOrFetch(ctx, "knowledge/player=sachin tendulkar", TTLLong, fetch)
		require.NoError(t, err)
		assert.False(t, first.Hit)

		second, err := c.GetOrFetch(ctx, "knowledge/player=sachin tendulkar", TTLLong, fetch)
		require.NoError(t, err)
		assert.True(t, second.Hit)
		assert.Equal(t, "18426", second.Value.GetString("runs"))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Should bypass Redis once the server goes away", func(t *testing.T) {
		mr, store := setupMiniredis(t)
		c := New(store, DefaultConfig())
		ctx := testContext(t)

		mr.Close()
		res, err := c.GetOrFetch(ctx, "down", TTLShort, func(context.Context) (core.Payload, error) {
			return core.Payload{"v": "direct"}, nil
		})
		require.NoError(t, err)
		assert.True(t, res.Bypassed)
	})
}
