// Package telemetry exposes Prometheus collectors for the search pipeline.
//
// Collectors live on a Metrics value rather than package globals so that
// each Engine, and each test, can register on its own registry.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "expertfind"

// Metrics holds the collectors.
type Metrics struct {
	EmbeddingRequestsTotal   *prometheus.CounterVec
	EmbeddingRequestDuration *prometheus.HistogramVec
	SearchesTotal            *prometheus.CounterVec
	SearchDuration           prometheus.Histogram
	ExtractionFallbacksTotal prometheus.Counter
	ClassifiedResultsTotal   *prometheus.CounterVec
	IndexEntries             prometheus.Gauge
	HTTPRequestsTotal        *prometheus.CounterVec
	HTTPRequestDuration      *prometheus.HistogramVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		EmbeddingRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "embedding_requests_total",
				Help:      "Total number of embedding requests",
			},
			[]string{"operation", "status"}, // "single"/"batch", "ok"/"error"
		),
		EmbeddingRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "embedding_request_duration_seconds",
				Help:      "Embedding request duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "searches_total",
				Help:      "Total number of queries by outcome",
			},
			[]string{"outcome"}, // "ok" / "error"
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "search_duration_seconds",
				Help:      "End-to-end query duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		ExtractionFallbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "extraction_fallbacks_total",
				Help:      "Queries answered with empty criteria after extraction failed",
			},
		),
		ClassifiedResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "classified_results_total",
				Help:      "Retrieved results by classification bucket",
			},
			[]string{"bucket"}, // "exact" / "recommended" / "dropped"
		),
		IndexEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "index_entries",
				Help:      "Entries in the loaded vector index",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.EmbeddingRequestsTotal,
		m.EmbeddingRequestDuration,
		m.SearchesTotal,
		m.SearchDuration,
		m.ExtractionFallbacksTotal,
		m.ClassifiedResultsTotal,
		m.IndexEntries,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
