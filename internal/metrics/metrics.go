// Package metrics configures the OpenTelemetry meter provider and serves
// the Prometheus scrape endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/cryptoquery/internal/logger"
)

// Config selects metric readers.
type Config struct {
	ServiceName string
	Prometheus  bool
	// OTLPEndpoint enables a periodic OTLP gRPC reader when set.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	Insecure     bool
}

// MetricProvider is the installed meter provider.
type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
	// Handler serves the Prometheus registry, or nil when disabled.
	Handler() http.Handler
}

type meterProvider struct {
	*sdkmetric.MeterProvider
	registry *promclient.Registry
}

func (m *meterProvider) Handler() http.Handler {
	if m.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NewMetricProvider builds the configured readers and installs the
// provider globally.
func NewMetricProvider(ctx context.Context, cfg Config) (MetricProvider, error) {
	var (
		opts     []sdkmetric.Option
		registry *promclient.Registry
	)

	if cfg.Prometheus {
		registry = promclient.NewRegistry()
		exp, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("metrics: prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(exp))
	}

	if cfg.OTLPEndpoint != "" {
		grpcOpts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpointURL(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders),
		}
		if cfg.Insecure {
			grpcOpts = append(grpcOpts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, grpcOpts...)
		if err != nil {
			return nil, fmt.Errorf("metrics: otlp exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
	}

	opts = append(opts, sdkmetric.WithResource(
		resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName)),
	))

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	return &meterProvider{MeterProvider: mp, registry: registry}, nil
}

// Server exposes /metrics over HTTP.
type Server struct {
	server *http.Server
	log    logger.LoggerInterface
}

// NewServer creates a scrape server on port for handler.
func NewServer(port int, handler http.Handler, log logger.LoggerInterface) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start serves in the background.
func (s *Server) Start(ctx context.Context) {
	s.log.Info(ctx, "serving metrics", "addr", s.server.Addr)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(ctx, "metrics server stopped", "error", err)
		}
	}()
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
