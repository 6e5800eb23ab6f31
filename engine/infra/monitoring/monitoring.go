package monitoring

import (
	"context"
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/howzat/howzat/pkg/logger"
)

// Service encapsulates metrics collection. When disabled or failed it
// degrades to no-op instruments so callers never need nil checks.
type Service struct {
	meter       metric.Meter
	metrics     *Metrics
	exporter    *prometheus.Exporter
	provider    *sdkmetric.MeterProvider
	registry    *prom.Registry
	config      *Config
	initialized bool
}

func newDisabledService(cfg *Config) *Service {
	meter := noop.NewMeterProvider().Meter("howzat")
	return &Service{
		config:  cfg,
		meter:   meter,
		metrics: newMetrics(context.Background(), meter),
	}
}

// NewService creates a monitoring service backed by a Prometheus exporter.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	log := logger.FromContext(ctx)
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		log.Debug("monitoring disabled, using no-op meter")
		return newDisabledService(cfg), nil
	}
	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("howzat")
	service := &Service{
		meter:       meter,
		metrics:     newMetrics(ctx, meter),
		exporter:    exporter,
		provider:    provider,
		registry:    registry,
		config:      cfg,
		initialized: true,
	}
	log.Info("monitoring service initialized", "path", cfg.Path)
	return service, nil
}

// NewServiceWithFallback creates a monitoring service that degrades to no-op
// instruments instead of failing startup.
func NewServiceWithFallback(ctx context.Context, cfg *Config) *Service {
	service, err := NewService(ctx, cfg)
	if err != nil {
		logger.FromContext(ctx).Error("failed to initialize monitoring, using no-op implementation", "error", err)
		return newDisabledService(cfg)
	}
	return service
}

// Meter returns the OpenTelemetry meter for custom instrumentation.
func (s *Service) Meter() metric.Meter {
	return s.meter
}

// Metrics returns the query pipeline instruments.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

func (s *Service) Path() string {
	return s.config.Path
}

func (s *Service) IsInitialized() bool {
	return s.initialized
}

// ExporterHandler returns the HTTP handler for the metrics endpoint.
func (s *Service) ExporterHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.initialized {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte("monitoring service not initialized")); err != nil {
				logger.FromContext(r.Context()).Error("failed to write response", "error", err)
			}
			return
		}
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.provider != nil {
		return s.provider.Shutdown(ctx)
	}
	return nil
}
