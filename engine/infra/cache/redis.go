package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/howzat/howzat/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a go-redis universal client.
type RedisStore struct {
	client redis.UniversalClient
	once   sync.Once
}

// NewRedisStore connects to Redis and validates connectivity within the
// configured ping timeout.
func NewRedisStore(ctx context.Context, cfg *Config) (*RedisStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}
	client, err := buildRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging Redis server (timeout=%s): %w", cfg.PingTimeout, err)
	}
	logger.FromContext(ctx).With(
		"cache_driver", "redis",
		"host", cfg.Host,
		"port", cfg.Port,
		"db", cfg.DB,
	).Info("Redis connection established")
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client, used by tests with
// miniredis.
func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func buildRedisClient(cfg *Config) (redis.UniversalClient, error) {
	if cfg.URL != "" {
		opt, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing Redis URL: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrBackend, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, _ TTLClass, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrBackend, err)
	}
	return nil
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrBackend, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrBackend, err)
	}
	return nil
}

// Close shuts down the Redis connection. Safe to call more than once.
func (s *RedisStore) Close() error {
	var err error
	s.once.Do(func() {
		err = s.client.Close()
	})
	return err
}
