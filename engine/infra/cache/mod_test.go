package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/pkg/logger"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	store, err := NewMemoryStore(64)
	require.NoError(t, err)
	return New(store, DefaultConfig())
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logger.ContextWithLogger(t.Context(), logger.NewForTests())
}

func TestGetOrFetch(t *testing.T) {
	t.Run("Should fetch once and serve the second call from cache", func(t *testing.T) {
		c := newTestCache(t)
		ctx := testContext(t)
		var calls atomic.Int32
		fetch := func(context.Context) (core.Payload, error) {
			calls.Add(1)
			return core.Payload{"score": "312/4"}, nil
		}

		first, err := c.GetOrFetch(ctx, "livescores/none", TTLRealtime, fetch)
		require.NoError(t, err)
		assert.False(t, first.Hit)
		assert.Equal(t, "312/4", first.Value.GetString("score"))

		second, err := c.GetOrFetch(ctx, "livescores/none", TTLRealtime, fetch)
		require.NoError(t, err)
		assert.True(t, second.Hit)
		assert.False(t, second.Stale)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Should run a single fetch for concurrent callers on a fresh key", func(t *testing.T) {
		c := newTestCache(t)
		ctx := testContext(t)
		var calls atomic.Int32
		release := make(chan struct{})
		fetch := func(context.Context) (core.Payload, error) {
			calls.Add(1)
			<-release
			return core.Payload{"v": "x"}, nil
		}

		const n = 12
		var wg sync.WaitGroup
		results := make([]*Result, n)
		errs := make([]error, n)
		start := make(chan struct{})
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				results[i], errs[i] = c.GetOrFetch(ctx, "stampede", TTLShort, fetch)
			}()
		}
		close(start)
		// Let the goroutines pile up behind the in-flight fetch.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for i := range n {
			require.NoError(t, errs[i])
			require.NotNil(t, results[i])
			assert.Equal(t, "x", results[i].Value.GetString("v"))
		}
	})

	t.Run("Should refetch after the freshness window expires", func(t *testing.T) {
		store, err := NewMemoryStore(64)
		require.NoError(t, err)
		c := New(store, DefaultConfig())
		now := time.Now()
		c.now = func() time.Time { return now }
		store.now = c.now
		ctx := testContext(t)

		var calls atomic.Int32
		fetch := func(context.Context) (core.Payload, error) {
			calls.Add(1)
			return core.Payload{"n": float64(calls.Load())}, nil
		}

		_, err = c.GetOrFetch(ctx, "expiry", TTLRealtime, fetch)
		require.NoError(t, err)

		now = now.Add(31 * time.Second)
		res, err := c.GetOrFetch(ctx, "expiry", TTLRealtime, fetch)
		require.NoError(t, err)
		assert.False(t, res.Hit)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("Should serve stale value with marker when refresh fails inside grace window", func(t *testing.T) {
		store, err := NewMemoryStore(64)
		require.NoError(t, err)
		c := New(store, DefaultConfig())
		now := time.Now()
		c.now = func() time.Time { return now }
		store.now = c.now
		ctx := testContext(t)

		good := func(context.Context) (core.Payload, error) {
			return core.Payload{"avg": "57.3"}, nil
		}
		bad := func(context.Context) (core.Payload, error) {
			return nil, errors.New("upstream down")
		}

		_, err = c.GetOrFetch(ctx, "stale", TTLRealtime, good)
		require.NoError(t, err)

		// Past freshness but inside the 2x grace window.
		now = now.Add(45 * time.Second)
		res, err := c.GetOrFetch(ctx, "stale", TTLRealtime, bad)
		require.NoError(t, err)
		assert.True(t, res.Stale)
		assert.Equal(t, "57.3", res.Value.GetString("avg"))
	})

	t.Run("Should propagate fetch error once the grace window has passed", func(t *testing.T) {
		store, err := NewMemoryStore(64)
		require.NoError(t, err)
		c := New(store, DefaultConfig())
		now := time.Now()
		c.now = func() time.Time { return now }
		store.now = c.now
		ctx := testContext(t)

		_, err = c.GetOrFetch(ctx, "gone", TTLRealtime, func(context.Context) (core.Payload, error) {
			return core.Payload{"v": "old"}, nil
		})
		require.NoError(t, err)

		now = now.Add(5 * time.Minute)
		upstreamErr := errors.New("upstream down")
		_, err = c.GetOrFetch(ctx, "gone", TTLRealtime, func(context.Context) (core.Payload, error) {
			return nil, upstreamErr
		})
		assert.ErrorIs(t, err, upstreamErr)
	})

	t.Run("Should bypass cache and fetch directly when the backend fails", func(t *testing.T) {
		c := New(&failingStore{}, DefaultConfig())
		ctx := testContext(t)
		res, err := c.GetOrFetch(ctx, "bypass", TTLShort, func(context.Context) (core.Payload, error) {
			return core.Payload{"v": "direct"}, nil
		})
		require.NoError(t, err)
		assert.True(t, res.Bypassed)
		assert.Equal(t, "direct", res.Value.GetString("v"))
	})
}

type failingStore struct{}

func (f *failingStore) Get(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: boom", ErrBackend)
}

func (f *failingStore) Set(context.Context, string, string, TTLClass, time.Duration) error {
	return ErrBackend
}

func (f *failingStore) Del(context.Context, ...string) error { return ErrBackend }
func (f *failingStore) Ping(context.Context) error           { return ErrBackend }
func (f *failingStore) Close() error                         { return nil }
