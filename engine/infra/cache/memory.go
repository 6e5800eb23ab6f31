package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore implements Store with one bounded LRU shard per TTL class, so
// memory pressure evicts within a class instead of letting long-lived
// entries push out realtime ones.
type MemoryStore struct {
	shards map[TTLClass]*lru.Cache[string, memEntry]
	now    func() time.Time
}

func NewMemoryStore(capacityPerClass int) (*MemoryStore, error) {
	if capacityPerClass < 1 {
		capacityPerClass = 4096
	}
	shards := make(map[TTLClass]*lru.Cache[string, memEntry], 4)
	for _, class := range []TTLClass{TTLRealtime, TTLShort, TTLMedium, TTLLong} {
		shard, err := lru.New[string, memEntry](capacityPerClass)
		if err != nil {
			return nil, err
		}
		shards[class] = shard
	}
	return &MemoryStore{shards: shards, now: time.Now}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	for _, shard := range s.shards {
		if entry, ok := shard.Get(key); ok {
			if s.now().After(entry.expiresAt) {
				shard.Remove(key)
				return "", ErrNotFound
			}
			return entry.value, nil
		}
	}
	return "", ErrNotFound
}

func (s *MemoryStore) Set(_ context.Context, key, value string, class TTLClass, ttl time.Duration) error {
	shard, ok := s.shards[class]
	if !ok {
		shard = s.shards[TTLRealtime]
	}
	shard.Add(key, memEntry{value: value, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		for _, shard := range s.shards {
			shard.Remove(key)
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	for _, shard := range s.shards {
		shard.Purge()
	}
	return nil
}
