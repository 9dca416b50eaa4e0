package observe

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/voxpage/voxpage/internal/health"
)

// ProviderConfig configures the OpenTelemetry SDK providers.
type ProviderConfig struct {
	// ServiceName is the service name reported in telemetry. Default: "voxpage".
	ServiceName string

	// ServiceVersion is the service version reported in telemetry.
	ServiceVersion string

	// TraceExporter is an optional span exporter. When nil, spans are
	// recorded but not exported; metrics still flow to Prometheus.
	TraceExporter sdktrace.SpanExporter
}

// shutdownGroup collects provider shutdown funcs and runs them in reverse
// registration order, joining every failure.
type shutdownGroup []func(context.Context) error

func (g shutdownGroup) shutdown(ctx context.Context) error {
	var errs []error
	for i := len(g) - 1; i >= 0; i-- {
		errs = append(errs, g[i](ctx))
	}
	return errors.Join(errs...)
}

// InitProvider installs the global OTel meter and tracer providers: metrics
// flow through a Prometheus exporter bridge (scraped from the server built by
// [Server]), traces through cfg.TraceExporter when one is given.
//
// The returned func flushes and closes every provider; call it in a defer
// from main().
func InitProvider(_ context.Context, cfg ProviderConfig) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "voxpage"
	}
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("observe: build resource: %w", err)
	}

	var closers shutdownGroup

	mp, err := newMeterProvider(res)
	if err != nil {
		return nil, fmt.Errorf("observe: init metrics: %w", err)
	}
	otel.SetMeterProvider(mp)
	closers = append(closers, mp.Shutdown)

	tp := newTracerProvider(res, cfg.TraceExporter)
	otel.SetTracerProvider(tp)
	closers = append(closers, tp.Shutdown)

	return closers.shutdown, nil
}

// newResource describes this service for every exported signal.
func newResource(cfg ProviderConfig) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
}

func newMeterProvider(res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exp, err := promexporter.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exp),
	), nil
}

func newTracerProvider(res *resource.Resource, exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...)
}

// Server builds the operational HTTP server: the Prometheus scrape endpoint
// on /metrics plus the /healthz and /readyz probes. The caller owns the
// server lifecycle.
func Server(addr string, probes ...health.Probe) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(probes...).Register(mux)
	return &http.Server{Addr: addr, Handler: mux}
}
