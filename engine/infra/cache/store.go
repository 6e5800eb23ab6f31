package cache

import (
	"context"
	"time"
)

// Store is the minimal KV contract a cache backend must satisfy. Values are
// envelope-encoded strings; ttl is the hard retention window (freshness plus
// grace), after which Get must return ErrNotFound.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, class TTLClass, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}
