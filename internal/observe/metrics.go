// Package observe provides application-wide observability primitives for
// voxpage: OpenTelemetry metrics, tracing helpers, and structured logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all voxpage metrics.
const meterName = "github.com/voxpage/voxpage"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// OCRDuration tracks document text-recognition latency, submission
	// through the final poll.
	OCRDuration metric.Float64Histogram

	// SynthesisDuration tracks speech synthesis latency.
	SynthesisDuration metric.Float64Histogram

	// TranscodeDuration tracks the ffmpeg voice-message remux latency.
	TranscodeDuration metric.Float64Histogram

	// PipelineDuration tracks end-to-end document-to-speech latency.
	PipelineDuration metric.Float64Histogram

	// --- Counters ---

	// PipelineRuns counts pipeline runs. Use with attribute:
	//   attribute.String("status", ...) — "ok", "no_text", "ocr_failed",
	//   "synthesis_failed", "transcode_failed".
	PipelineRuns metric.Int64Counter

	// UploadsRejected counts uploads rejected before pipeline entry. Use with
	// attribute: attribute.String("reason", ...) — "media_type", "size".
	UploadsRejected metric.Int64Counter

	// ProviderErrors counts backend service errors. Use with attribute:
	//   attribute.String("kind", ...) — "ocr", "speech".
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of dialogues currently awaiting a
	// language choice.
	ActiveSessions metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds). The
// pipeline waits on OCR polling and batch synthesis, so the upper buckets are
// much wider than they would be for an interactive voice loop.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.OCRDuration, err = m.Float64Histogram("voxpage.ocr.duration",
		metric.WithDescription("Latency of document text recognition."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthesisDuration, err = m.Float64Histogram("voxpage.synthesis.duration",
		metric.WithDescription("Latency of speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscodeDuration, err = m.Float64Histogram("voxpage.transcode.duration",
		metric.WithDescription("Latency of the voice-message remux."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PipelineDuration, err = m.Float64Histogram("voxpage.pipeline.duration",
		metric.WithDescription("End-to-end document-to-speech latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.PipelineRuns, err = m.Int64Counter("voxpage.pipeline.runs",
		metric.WithDescription("Total pipeline runs by outcome status."),
	); err != nil {
		return nil, err
	}
	if met.UploadsRejected, err = m.Int64Counter("voxpage.uploads.rejected",
		metric.WithDescription("Uploads rejected before pipeline entry, by reason."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("voxpage.provider.errors",
		metric.WithDescription("Backend service errors by provider kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("voxpage.active_sessions",
		metric.WithDescription("Dialogues currently awaiting a language choice."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordPipelineRun records a pipeline run outcome.
func (m *Metrics) RecordPipelineRun(ctx context.Context, status string) {
	m.PipelineRuns.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordProviderError records a backend service error for the given provider
// kind ("ocr" or "speech").
func (m *Metrics) RecordProviderError(ctx context.Context, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}

// RecordUploadRejected records an upload rejected before pipeline entry.
func (m *Metrics) RecordUploadRejected(ctx context.Context, reason string) {
	m.UploadsRejected.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}
