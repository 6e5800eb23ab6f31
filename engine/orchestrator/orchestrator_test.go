package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/registry"
	"github.com/howzat/howzat/engine/tool"
	"github.com/howzat/howzat/pkg/logger"
)

type stubTool struct {
	name  string
	ttl   cache.TTLClass
	fetch func(ctx context.Context) (core.Payload, error)
	calls atomic.Int32
}

func (s *stubTool) Name() string                                  { return s.name }
func (s *stubTool) Trigger(*query.ClassificationResult) bool      { return true }
func (s *stubTool) TTLClass() cache.TTLClass                      { return s.ttl }
func (s *stubTool) Capabilities() []string                        { return nil }
func (s *stubTool) Sources() []string                             { return nil }
func (s *stubTool) Confidence() float64                           { return 0.8 }
func (s *stubTool) Fetch(ctx context.Context, _ *query.Query, _ []query.Entity) (core.Payload, error) {
	s.calls.Add(1)
	return s.fetch(ctx)
}

func testHarness(t *testing.T, tools ...*stubTool) (*Orchestrator, context.Context) {
	t.Helper()
	ctx := logger.ContextWithLogger(context.Background(), logger.NewForTests())
	reg := registry.New()
	for _, tl := range tools {
		require.NoError(t, reg.Register(ctx, tl))
	}
	store, err := cache.NewMemoryStore(64)
	require.NoError(t, err)
	cfg := &Config{RetryBase: time.Millisecond, MaxRetries: 1}
	return New(reg, cache.New(store, cache.DefaultConfig()), cfg), ctx
}

func testQuery(t *testing.T) (*query.Query, *query.ClassificationResult) {
	t.Helper()
	q, err := query.New("how many runs did Kohli score", "", nil)
	require.NoError(t, err)
	cr := query.DefaultResult()
	cr.Entities = []query.Entity{{Kind: query.EntityPlayer, Name: "Virat Kohli"}}
	return q, cr
}

func TestOrchestrator_Execute(t *testing.T) {
	t.Run("Should preserve input order regardless of completion order", func(t *testing.T) {
		slow := &stubTool{name: "knowledge", ttl: cache.TTLLong, fetch: func(ctx context.Context) (core.Payload, error) {
			time.Sleep(30 * time.Millisecond)
			return core.Payload{"source": "knowledge"}, nil
		}}
		fast := &stubTool{name: "livescores", ttl: cache.TTLRealtime, fetch: func(ctx context.Context) (core.Payload, error) {
			return core.Payload{"source": "livescores"}, nil
		}}
		orch, ctx := testHarness(t, slow, fast)
		q, cr := testQuery(t)
		execs := orch.Execute(ctx, []string{"knowledge", "livescores"}, q, cr)
		require.Len(t, execs, 2)
		assert.Equal(t, "knowledge", execs[0].Tool)
		assert.Equal(t, "livescores", execs[1].Tool)
		assert.Equal(t, OutcomeSuccess, execs[0].Outcome)
		assert.Equal(t, OutcomeSuccess, execs[1].Outcome)
	})

	t.Run("Should isolate one tool's failure from its siblings", func(t *testing.T) {
		ok := &stubTool{name: "knowledge", ttl: cache.TTLLong, fetch: func(ctx context.Context) (core.Payload, error) {
			return core.Payload{"answer": "42"}, nil
		}}
		broken := &stubTool{name: "balldb", ttl: cache.TTLMedium, fetch: func(ctx context.Context) (core.Payload, error) {
			return nil, errors.New("schema drift")
		}}
		orch, ctx := testHarness(t, ok, broken)
		q, cr := testQuery(t)
		execs := orch.Execute(ctx, []string{"balldb", "knowledge"}, q, cr)
		require.Len(t, execs, 2)
		assert.Equal(t, OutcomeFailure, execs[0].Outcome)
		assert.Equal(t, FailureInternal, execs[0].FailureKind)
		assert.Equal(t, OutcomeSuccess, execs[1].Outcome)
		assert.Equal(t, "42", execs[1].Payload.GetString("answer"))
	})

	t.Run("Should retry a transient failure exactly once", func(t *testing.T) {
		flaky := &stubTool{name: "livescores", ttl: cache.TTLRealtime}
		flaky.fetch = func(ctx context.Context) (core.Payload, error) {
			if flaky.calls.Load() == 1 {
				return nil, tool.Transient(errors.New("connection reset"))
			}
			return core.Payload{"score": "245/3"}, nil
		}
		orch, ctx := testHarness(t, flaky)
		q, cr := testQuery(t)
		execs := orch.Execute(ctx, []string{"livescores"}, q, cr)
		require.Len(t, execs, 1)
		assert.Equal(t, OutcomeSuccess, execs[0].Outcome)
		assert.Equal(t, 2, execs[0].Attempts)
		assert.Equal(t, int32(2), flaky.calls.Load())
	})

	t.Run("Should not retry validation errors", func(t *testing.T) {
		rejecting := &stubTool{name: "weather", ttl: cache.TTLRealtime, fetch: func(ctx context.Context) (core.Payload, error) {
			return nil, fmt.Errorf("%w: unknown venue", tool.ErrInvalidInput)
		}}
		orch, ctx := testHarness(t, rejecting)
		q, cr := testQuery(t)
		execs := orch.Execute(ctx, []string{"weather"}, q, cr)
		require.Len(t, execs, 1)
		assert.Equal(t, OutcomeFailure, execs[0].Outcome)
		assert.Equal(t, FailureValidation, execs[0].FailureKind)
		assert.Equal(t, 1, execs[0].Attempts)
		assert.Equal(t, int32(1), rejecting.calls.Load())
	})

	t.Run("Should mark persistent transient failures as upstream", func(t *testing.T) {
		down := &stubTool{name: "commentary", ttl: cache.TTLRealtime, fetch: func(ctx context.Context) (core.Payload, error) {
			return nil, tool.Transient(errors.New("bad gateway"))
		}}
		orch, ctx := testHarness(t, down)
		q, cr := testQuery(t)
		execs := orch.Execute(ctx, []string{"commentary"}, q, cr)
		require.Len(t, execs, 1)
		assert.Equal(t, OutcomeFailure, execs[0].Outcome)
		assert.Equal(t, FailureUpstream, execs[0].FailureKind)
		assert.Equal(t, int32(2), down.calls.Load())
	})

	t.Run("Should time out a tool that exceeds its budget", func(t *testing.T) {
		hanging := &stubTool{name: "livescores", ttl: cache.TTLRealtime, fetch: func(ctx context.Context) (core.Payload, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}}
		orch, ctx := testHarness(t, hanging)
		orch.cfg.ToolTimeouts = map[string]time.Duration{"livescores": 20 * time.Millisecond}
		q, cr := testQuery(t)
		execs := orch.Execute(ctx, []string{"livescores"}, q, cr)
		require.Len(t, execs, 1)
		assert.Equal(t, OutcomeTimeout, execs[0].Outcome)
		assert.Equal(t, FailureTimeout, execs[0].FailureKind)
	})

	t.Run("Should serve a repeated query from cache", func(t *testing.T) {
		counting := &stubTool{name: "knowledge", ttl: cache.TTLLong, fetch: func(ctx context.Context) (core.Payload, error) {
			return core.Payload{"answer": "cached"}, nil
		}}
		orch, ctx := testHarness(t, counting)
		q, cr := testQuery(t)
		first := orch.Execute(ctx, []string{"knowledge"}, q, cr)
		require.Equal(t, OutcomeSuccess, first[0].Outcome)
		second := orch.Execute(ctx, []string{"knowledge"}, q, cr)
		require.Len(t, second, 1)
		assert.Equal(t, OutcomeCacheHit, second[0].Outcome)
		assert.Equal(t, "cached", second[0].Payload.GetString("answer"))
		assert.Equal(t, int32(1), counting.calls.Load())
	})

	t.Run("Should report an unregistered tool as not found", func(t *testing.T) {
		orch, ctx := testHarness(t)
		q, cr := testQuery(t)
		execs := orch.Execute(ctx, []string{"ghost"}, q, cr)
		require.Len(t, execs, 1)
		assert.Equal(t, OutcomeFailure, execs[0].Outcome)
		assert.Equal(t, FailureNotFound, execs[0].FailureKind)
	})

	t.Run("Should return nil for an empty tool list", func(t *testing.T) {
		orch, ctx := testHarness(t)
		q, cr := testQuery(t)
		assert.Nil(t, orch.Execute(ctx, nil, q, cr))
	})
}
