package orchestrator

import (
	"context"

	"github.com/sethvargo/go-retry"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/tool"
)

// invoker wraps a tool fetch with bounded retry. Transient upstream failures
// are retried with exponential backoff; validation errors surface
// immediately. The per-tool context deadline still bounds the whole sequence.
type invoker struct {
	backoff func() retry.Backoff
}

func newInvoker(cfg Config) *invoker {
	return &invoker{
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(cfg.MaxRetries, retry.NewExponential(cfg.RetryBase))
		},
	}
}

func (iv *invoker) invoke(ctx context.Context, t tool.Tool, q *query.Query, entities []query.Entity) (core.Payload, int, error) {
	var payload core.Payload
	attempts := 0
	err := retry.Do(ctx, iv.backoff(), func(ctx context.Context) error {
		attempts++
		p, fetchErr := t.Fetch(ctx, q, entities)
		if fetchErr != nil {
			if tool.IsTransient(fetchErr) {
				return retry.RetryableError(fetchErr)
			}
			return fetchErr
		}
		payload = p
		return nil
	})
	if err != nil {
		return nil, attempts, err
	}
	return payload, attempts, nil
}
