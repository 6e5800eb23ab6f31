package classifier

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/pkg/logger"
)

const (
	defaultMemoWindow = 2 * time.Minute
	memoPruneAbove    = 1024
)

type memoEntry struct {
	result *query.ClassificationResult
	at     time.Time
}

// Classifier wraps the NLU provider with memoization and failure recovery.
// Memoizing by exact query text within a bounded window keeps classification
// deterministic inside one pipeline run even when the underlying model is
// probabilistic; singleflight guarantees concurrent identical queries hit
// the provider once.
type Classifier struct {
	nlu    NLU
	window time.Duration
	flight singleflight.Group
	mu     sync.Mutex
	memo   map[string]memoEntry
	now    func() time.Time
}

type Option func(*Classifier)

// WithMemoWindow overrides the determinism window.
func WithMemoWindow(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.window = d
		}
	}
}

func New(nlu NLU, opts ...Option) *Classifier {
	c := &Classifier{
		nlu:    nlu,
		window: defaultMemoWindow,
		memo:   make(map[string]memoEntry),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never fails: when the NLU provider is unavailable the default
// classification is returned so the query still gets some answer.
func (c *Classifier) Classify(ctx context.Context, q *query.Query) *query.ClassificationResult {
	key := q.MemoKey()
	if cached := c.lookup(key); cached != nil {
		return cached
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		if cached := c.lookup(key); cached != nil {
			return cached, nil
		}
		result, extractErr := c.nlu.Extract(ctx, q.Text, q.Context)
		if extractErr != nil {
			return nil, extractErr
		}
		result.Normalize()
		c.store(key, result)
		return result, nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn("classification failed, using default",
			"query", q.Text, "error", err)
		return query.DefaultResult()
	}
	return v.(*query.ClassificationResult)
}

func (c *Classifier) lookup(key string) *query.ClassificationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.memo[key]
	if !ok || c.now().Sub(entry.at) > c.window {
		return nil
	}
	return entry.result
}

func (c *Classifier) store(key string, result *query.ClassificationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.memo) >= memoPruneAbove {
		cutoff := c.now().Add(-c.window)
		for k, e := range c.memo {
			if e.at.Before(cutoff) {
				delete(c.memo, k)
			}
		}
	}
	c.memo[key] = memoEntry{result: result, at: c.now()}
}
