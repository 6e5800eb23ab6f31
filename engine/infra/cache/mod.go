package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for a key from its upstream source.
type FetchFunc func(ctx context.Context) (core.Payload, error)

// Result is the outcome of a GetOrFetch call.
type Result struct {
	Value core.Payload
	// Hit is true when the value came from the store rather than the fetch.
	Hit bool
	// Stale marks a value served past its freshness window after a failed
	// refresh. Always within the grace window.
	Stale bool
	// Bypassed marks a value fetched directly because the backend was
	// unavailable.
	Bypassed bool
}

// envelope is the stored representation; stored-at drives freshness checks
// independently of the backend's hard TTL.
type envelope struct {
	Payload  core.Payload `json:"payload"`
	StoredAt int64        `json:"stored_at_ms"`
}

// Cache provides the atomic get-or-fetch primitive with per-class TTLs,
// single-flight stampede protection, and stale-on-error grace serving. It is
// the only shared mutable resource between concurrent tool executions.
type Cache struct {
	store       Store
	durations   Durations
	graceFactor int
	flight      singleflight.Group
	now         func() time.Time
}

// Setup builds the Cache and its backing store from config.
func Setup(ctx context.Context, cfg *Config) (*Cache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}
	cfg.normalize()
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case DriverRedis:
		store, err = NewRedisStore(ctx, cfg)
	case DriverMemory:
		store, err = NewMemoryStore(cfg.MemoryCapacity)
	default:
		err = fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return New(store, cfg), nil
}

// New wires a Cache around an existing store. Used directly by tests.
func New(store Store, cfg *Config) *Cache {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()
	return &Cache{
		store:       store,
		durations:   cfg.Durations,
		graceFactor: cfg.GraceFactor,
		now:         time.Now,
	}
}

// GetOrFetch returns the cached value for key when fresh, otherwise runs
// fetch at most once across all concurrent callers for the same key.
// Invariants:
//   - a fresh entry is served without fetching;
//   - concurrent callers for one key share a single in-flight fetch;
//   - a failed fetch falls back to a stale entry inside the grace window,
//     marked Stale;
//   - a backend failure bypasses the cache entirely and fetches directly.
func (c *Cache) GetOrFetch(ctx context.Context, key string, class TTLClass, fetch FetchFunc) (*Result, error) {
	ttl := c.durations.For(class)
	env, err := c.lookup(ctx, key)
	if err != nil {
		// Any store failure is treated as a backend outage.
		return c.bypass(ctx, key, fetch, err)
	}
	if env != nil && c.fresh(env, ttl) {
		return &Result{Value: env.Payload, Hit: true}, nil
	}

	v, ferr, _ := c.flight.Do(key, func() (any, error) {
		// Another flight may have refreshed the entry while this caller was
		// queued behind the key.
		if cur, lerr := c.lookup(ctx, key); lerr == nil && cur != nil && c.fresh(cur, ttl) {
			return &Result{Value: cur.Payload, Hit: true}, nil
		}
		value, fetchErr := fetch(ctx)
		if fetchErr != nil {
			if env != nil && c.withinGrace(env, ttl) {
				logger.FromContext(ctx).Warn("serving stale cache entry after failed refresh",
					"key", key, "class", string(class), "error", fetchErr)
				return &Result{Value: env.Payload, Hit: true, Stale: true}, nil
			}
			return nil, fetchErr
		}
		c.storeValue(ctx, key, class, ttl, value)
		return &Result{Value: value}, nil
	})
	if ferr != nil {
		return nil, ferr
	}
	res, ok := v.(*Result)
	if !ok {
		return nil, fmt.Errorf("cache: unexpected flight result type %T", v)
	}
	return res, nil
}

// bypass calls the fetch directly when the backend is down. Availability
// beats freshness bookkeeping here.
func (c *Cache) bypass(ctx context.Context, key string, fetch FetchFunc, cause error) (*Result, error) {
	logger.FromContext(ctx).Warn("cache backend unavailable, fetching directly",
		"key", key, "error", cause)
	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Value: value, Bypassed: true}, nil
}

func (c *Cache) lookup(ctx context.Context, key string) (*envelope, error) {
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var env envelope
	if jsonErr := json.Unmarshal([]byte(raw), &env); jsonErr != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.store.Del(ctx, key)
		return nil, nil
	}
	return &env, nil
}

func (c *Cache) storeValue(ctx context.Context, key string, class TTLClass, ttl time.Duration, value core.Payload) {
	env := envelope{Payload: value, StoredAt: c.now().UnixMilli()}
	raw, err := json.Marshal(env)
	if err != nil {
		logger.FromContext(ctx).Error("failed to encode cache entry", "key", key, "error", err)
		return
	}
	hardTTL := ttl * time.Duration(c.graceFactor)
	if err := c.store.Set(ctx, key, string(raw), class, hardTTL); err != nil {
		// A write failure only costs a future refetch.
		logger.FromContext(ctx).Warn("failed to write cache entry", "key", key, "error", err)
	}
}

func (c *Cache) fresh(env *envelope, ttl time.Duration) bool {
	age := c.now().Sub(time.UnixMilli(env.StoredAt))
	return age <= ttl
}

func (c *Cache) withinGrace(env *envelope, ttl time.Duration) bool {
	age := c.now().Sub(time.UnixMilli(env.StoredAt))
	return age <= ttl*time.Duration(c.graceFactor)
}

// Invalidate drops entries, used by operational tooling and tests.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	return c.store.Del(ctx, keys...)
}

// HealthCheck pings the backing store.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// Close tears down the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}
