package orchestrator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/registry"
	"github.com/howzat/howzat/engine/tool"
	"github.com/howzat/howzat/pkg/logger"
)

// Orchestrator fans a routed tool list out across the cache layer. Every
// selected tool yields exactly one Execution whatever happens, and one tool's
// failure never cancels its siblings.
type Orchestrator struct {
	reg     *registry.Registry
	cache   *cache.Cache
	cfg     Config
	invoker *invoker
	now     func() time.Time
}

func New(reg *registry.Registry, c *cache.Cache, cfg *Config) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()
	return &Orchestrator{
		reg:     reg,
		cache:   c,
		cfg:     *cfg,
		invoker: newInvoker(*cfg),
		now:     time.Now,
	}
}

// Execute runs the named tools concurrently and returns one Execution per
// tool in input order, which is the router's priority order.
func (o *Orchestrator) Execute(ctx context.Context, toolNames []string, q *query.Query, cr *query.ClassificationResult) []Execution {
	if len(toolNames) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)
	log.Debug("executing tools", "count", len(toolNames), "tools", toolNames)

	// The global ceiling bounds the whole fan-out; tools still pending at
	// the deadline report as timeouts, not as a request failure.
	runCtx, cancel := context.WithTimeout(ctx, o.cfg.GlobalTimeout)
	defer cancel()

	results := make([]Execution, len(toolNames))
	g := new(errgroup.Group)
	g.SetLimit(o.cfg.MaxConcurrent)
	for i, name := range toolNames {
		g.Go(func() error {
			results[i] = o.executeOne(runCtx, name, q, cr)
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	log.Debug("tool execution finished",
		"ok", countOK(results), "failed", len(results)-countOK(results))
	return results
}

func (o *Orchestrator) executeOne(ctx context.Context, name string, q *query.Query, cr *query.ClassificationResult) Execution {
	exec := Execution{Tool: name, Start: o.now()}
	t, err := o.reg.Resolve(name)
	if err != nil {
		exec.End = o.now()
		exec.Outcome = OutcomeFailure
		exec.FailureKind = FailureNotFound
		exec.Err = err
		return exec
	}
	exec.Confidence = t.Confidence()

	toolCtx, cancel := context.WithTimeout(ctx, o.cfg.timeoutFor(t))
	defer cancel()

	attempts := 0
	res, err := o.cache.GetOrFetch(toolCtx, cacheKey(name, cr), t.TTLClass(),
		func(fetchCtx context.Context) (core.Payload, error) {
			p, n, fetchErr := o.invoker.invoke(fetchCtx, t, q, cr.Entities)
			attempts = n
			return p, fetchErr
		})
	exec.End = o.now()
	exec.Attempts = attempts
	if err != nil {
		return o.classifyFailure(ctx, exec, err)
	}

	exec.Payload = res.Value
	exec.Stale = res.Stale
	exec.CacheBypassed = res.Bypassed
	if res.Hit && !res.Stale {
		exec.Outcome = OutcomeCacheHit
	} else {
		// A stale serve counts as a success with a freshness caveat.
		exec.Outcome = OutcomeSuccess
	}
	return exec
}

// classifyFailure folds a fetch error into the outcome taxonomy.
func (o *Orchestrator) classifyFailure(ctx context.Context, exec Execution, err error) Execution {
	exec.Err = err
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		exec.Outcome = OutcomeTimeout
		exec.FailureKind = FailureTimeout
	case errors.Is(err, tool.ErrInvalidInput):
		exec.Outcome = OutcomeFailure
		exec.FailureKind = FailureValidation
	case tool.IsTransient(err):
		// Retries are exhausted by this point.
		exec.Outcome = OutcomeFailure
		exec.FailureKind = FailureUpstream
	default:
		exec.Outcome = OutcomeFailure
		exec.FailureKind = FailureInternal
	}
	logger.FromContext(ctx).Warn("tool execution failed",
		"tool", exec.Tool, "kind", string(exec.FailureKind), "error", err)
	return exec
}

// cacheKey joins the tool name with the normalized entity signature so two
// phrasings naming the same entities share a cache entry.
func cacheKey(name string, cr *query.ClassificationResult) string {
	return name + "/" + query.Signature(cr.Entities)
}

func countOK(execs []Execution) int {
	n := 0
	for i := range execs {
		if execs[i].OK() {
			n++
		}
	}
	return n
}
