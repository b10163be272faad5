// Package telemetry wires Prometheus metrics and an OpenTelemetry tracer
// for the trigger pipeline.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jonesrussell/pharma-triggers"

// Metrics holds the pipeline's Prometheus instruments.
type Metrics struct {
	ItemsProcessed     *prometheus.CounterVec // by source_type and dedup decision
	ItemsRejected      prometheus.Counter
	ProcessingDuration prometheus.Histogram
	BatchSize          prometheus.Histogram
}

// Provider bundles the tracer, metrics, and their registry.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider creates a provider with its own registry, so parallel test
// binaries never fight over global metric registration.
func NewProvider() *Provider {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Provider{
		Tracer:   otel.Tracer(instrumentationName),
		registry: registry,
		Metrics: &Metrics{
			ItemsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: "triggerd",
				Name:      "items_processed_total",
				Help:      "Items run through the pipeline, by source type and dedup decision.",
			}, []string{"source_type", "decision"}),
			ItemsRejected: factory.NewCounter(prometheus.CounterOpts{
				Namespace: "triggerd",
				Name:      "items_rejected_total",
				Help:      "Items dropped before scoring for failing validation.",
			}),
			ProcessingDuration: factory.NewHistogram(prometheus.HistogramOpts{
				Namespace: "triggerd",
				Name:      "item_processing_seconds",
				Help:      "Wall time to analyze, score, and deduplicate one item.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			}),
			BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
				Namespace: "triggerd",
				Name:      "batch_size",
				Help:      "Items per processed batch.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			}),
		},
	}
}

// Handler serves the provider's registry in Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// RecordItem records one pipeline outcome.
func (p *Provider) RecordItem(sourceType, decision string, duration time.Duration) {
	p.Metrics.ItemsProcessed.WithLabelValues(sourceType, decision).Inc()
	p.Metrics.ProcessingDuration.Observe(duration.Seconds())
}

// RecordRejected records a validation failure.
func (p *Provider) RecordRejected() {
	p.Metrics.ItemsRejected.Inc()
}

// RecordBatch records a batch size.
func (p *Provider) RecordBatch(size int) {
	p.Metrics.BatchSize.Observe(float64(size))
}
