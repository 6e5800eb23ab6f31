package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/howzat/howzat/engine/classifier"
	"github.com/howzat/howzat/engine/fusion"
	"github.com/howzat/howzat/engine/infra/monitoring"
	"github.com/howzat/howzat/engine/orchestrator"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/router"
	"github.com/howzat/howzat/pkg/logger"
)

const defaultBatchConcurrency = 4

// Service is the full query path: classification, routing, concurrent tool
// execution and fusion. One Service serves all requests.
type Service struct {
	classifier       *classifier.Classifier
	router           *router.Router
	orchestrator     *orchestrator.Orchestrator
	metrics          *monitoring.Metrics
	batchConcurrency int
	now              func() time.Time
}

type Option func(*Service)

// WithMetrics attaches pipeline instruments. Without it the service runs
// unobserved.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBatchConcurrency bounds how many batch queries run at once.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

func NewService(cl *classifier.Classifier, rt *router.Router, orch *orchestrator.Orchestrator, opts ...Option) *Service {
	s := &Service{
		classifier:       cl,
		router:           rt,
		orchestrator:     orch,
		batchConcurrency: defaultBatchConcurrency,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer runs one query through the full pipeline. Tool failures degrade the
// answer; only all-tools-failed surfaces as an error.
func (s *Service) Answer(ctx context.Context, q *query.Query) (*Answer, error) {
	start := s.now()
	log := logger.FromContext(ctx).With("query", q.Text)

	classifyStart := s.now()
	cr := s.classifier.Classify(ctx, q)
	if s.metrics != nil {
		s.metrics.RecordClassification(ctx, cr.Fallback, s.now().Sub(classifyStart))
	}

	tools := s.router.Route(cr)
	log.Debug("routed query", "intent", string(cr.Intent), "temporal", string(cr.Temporal),
		"complexity", cr.Complexity, "tools", tools)

	execs := s.orchestrator.Execute(ctx, tools, q, cr)
	s.recordExecutions(ctx, execs)

	fused, err := fusion.Fuse(ctx, execs)
	elapsed := s.now().Sub(start)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordQuery(ctx, "no_data", true, elapsed)
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordQuery(ctx, "success", fused.Degraded, elapsed)
	}
	return newAnswer(q, cr, fused, elapsed), nil
}

// AnswerBatch answers queries concurrently with a bounded worker pool.
// Results hold input order and each query succeeds or fails independently.
func (s *Service) AnswerBatch(ctx context.Context, queries []*query.Query) []BatchResult {
	results := make([]BatchResult, len(queries))
	g := new(errgroup.Group)
	g.SetLimit(s.batchConcurrency)
	for i, q := range queries {
		g.Go(func() error {
			answer, err := s.Answer(ctx, q)
			results[i] = BatchResult{Answer: answer, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) recordExecutions(ctx context.Context, execs []orchestrator.Execution) {
	if s.metrics == nil {
		return
	}
	for i := range execs {
		exec := &execs[i]
		s.metrics.RecordTool(ctx, exec.Tool, string(exec.Outcome), exec.Duration())
		switch {
		case exec.CacheBypassed:
			s.metrics.RecordCache(ctx, "bypass")
		case exec.Stale:
			s.metrics.RecordCache(ctx, "stale")
		case exec.Outcome == orchestrator.OutcomeCacheHit:
			s.metrics.RecordCache(ctx, "hit")
		case exec.OK():
			s.metrics.RecordCache(ctx, "miss")
		}
	}
}
