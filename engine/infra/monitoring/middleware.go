package monitoring

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/howzat/howzat/pkg/logger"
)

type httpInstruments struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	requestsInFlight metric.Int64UpDownCounter
}

// GinMiddleware returns middleware that records HTTP request metrics. A
// disabled service returns a pass-through handler.
func (s *Service) GinMiddleware(ctx context.Context) gin.HandlerFunc {
	if !s.initialized {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	inst := s.httpInstruments(ctx)
	return func(c *gin.Context) {
		start := time.Now()
		if inst.requestsInFlight != nil {
			inst.requestsInFlight.Add(c.Request.Context(), 1)
			defer inst.requestsInFlight.Add(c.Request.Context(), -1)
		}
		c.Next()
		inst.record(c, start)
	}
}

func (s *Service) httpInstruments(ctx context.Context) *httpInstruments {
	log := logger.FromContext(ctx)
	inst := &httpInstruments{}
	var err error
	if inst.requestsTotal, err = s.meter.Int64Counter(
		"howzat_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
	); err != nil {
		log.Error("failed to create http requests counter", "error", err)
	}
	if inst.requestDuration, err = s.meter.Float64Histogram(
		"howzat_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		log.Error("failed to create http request duration histogram", "error", err)
	}
	if inst.requestsInFlight, err = s.meter.Int64UpDownCounter(
		"howzat_http_requests_in_flight",
		metric.WithDescription("Currently active HTTP requests"),
	); err != nil {
		log.Error("failed to create http requests in flight counter", "error", err)
	}
	return inst
}

func (inst *httpInstruments) record(c *gin.Context, start time.Time) {
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	attrs := metric.WithAttributes(
		attribute.String("method", c.Request.Method),
		attribute.String("path", path),
		attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
	)
	if inst.requestsTotal != nil {
		inst.requestsTotal.Add(c.Request.Context(), 1, attrs)
	}
	if inst.requestDuration != nil {
		inst.requestDuration.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
	}
}
