package monitoring

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/howzat/howzat/pkg/logger"
)

var durationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15}

// Metrics holds the query pipeline instruments. Instrument creation errors
// are logged and leave the instrument nil; record methods tolerate that.
type Metrics struct {
	queriesTotal    metric.Int64Counter
	queryDuration   metric.Float64Histogram
	toolTotal       metric.Int64Counter
	toolDuration    metric.Float64Histogram
	cacheTotal      metric.Int64Counter
	fallbacksTotal  metric.Int64Counter
	classifyLatency metric.Float64Histogram
}

func newMetrics(ctx context.Context, meter metric.Meter) *Metrics {
	log := logger.FromContext(ctx)
	m := &Metrics{}
	var err error
	if m.queriesTotal, err = meter.Int64Counter(
		"howzat_queries_total",
		metric.WithDescription("Queries answered, by outcome"),
	); err != nil {
		log.Error("failed to create queries counter", "error", err)
	}
	if m.queryDuration, err = meter.Float64Histogram(
		"howzat_query_duration_seconds",
		metric.WithDescription("End-to-end query latency"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		log.Error("failed to create query duration histogram", "error", err)
	}
	if m.toolTotal, err = meter.Int64Counter(
		"howzat_tool_executions_total",
		metric.WithDescription("Tool executions, by tool and outcome"),
	); err != nil {
		log.Error("failed to create tool executions counter", "error", err)
	}
	if m.toolDuration, err = meter.Float64Histogram(
		"howzat_tool_duration_seconds",
		metric.WithDescription("Per-tool execution latency"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		log.Error("failed to create tool duration histogram", "error", err)
	}
	if m.cacheTotal, err = meter.Int64Counter(
		"howzat_cache_results_total",
		metric.WithDescription("Cache lookups, by result"),
	); err != nil {
		log.Error("failed to create cache results counter", "error", err)
	}
	if m.fallbacksTotal, err = meter.Int64Counter(
		"howzat_classifier_fallbacks_total",
		metric.WithDescription("Classifications that fell back to the default result"),
	); err != nil {
		log.Error("failed to create classifier fallbacks counter", "error", err)
	}
	if m.classifyLatency, err = meter.Float64Histogram(
		"howzat_classifier_duration_seconds",
		metric.WithDescription("Classification latency, memoized hits included"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		log.Error("failed to create classifier duration histogram", "error", err)
	}
	return m
}

// RecordQuery records one answered query.
func (m *Metrics) RecordQuery(ctx context.Context, outcome string, degraded bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("degraded", degraded),
	)
	if m.queriesTotal != nil {
		m.queriesTotal.Add(ctx, 1, attrs)
	}
	if m.queryDuration != nil {
		m.queryDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// RecordTool records one tool execution inside a fan-out.
func (m *Metrics) RecordTool(ctx context.Context, tool, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("outcome", outcome),
	)
	if m.toolTotal != nil {
		m.toolTotal.Add(ctx, 1, attrs)
	}
	if m.toolDuration != nil {
		m.toolDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("tool", tool)))
	}
}

// RecordCache records one cache lookup result: hit, miss, stale or bypass.
func (m *Metrics) RecordCache(ctx context.Context, result string) {
	if m.cacheTotal != nil {
		m.cacheTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}

// RecordClassification records one classification, fallback or not.
func (m *Metrics) RecordClassification(ctx context.Context, fallback bool, elapsed time.Duration) {
	if fallback && m.fallbacksTotal != nil {
		m.fallbacksTotal.Add(ctx, 1)
	}
	if m.classifyLatency != nil {
		m.classifyLatency.Record(ctx, elapsed.Seconds())
	}
}
