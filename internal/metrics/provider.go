package metrics

import "github.com/prometheus/client_golang/prometheus"

// AI provider and pipeline Prometheus metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "provider_requests_total",
			Help:      "Total number of AI provider requests",
		},
		[]string{"provider", "model", "operation", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdex",
			Name:      "provider_request_duration_seconds",
			Help:      "AI provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model", "operation"},
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "provider_errors_total",
			Help:      "Total AI provider errors",
		},
		[]string{"provider", "model", "operation", "error_type"},
	)

	DocumentsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "documents_processed_total",
			Help:      "Documents run through the processing pipeline",
		},
		[]string{"outcome"}, // "complete" / "error"
	)

	ChunksEmbeddedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "chunks_embedded_total",
			Help:      "Chunk embedding attempts during processing",
		},
		[]string{"status"}, // "success" / "failed"
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdex",
			Name:      "searches_total",
			Help:      "Total search requests by outcome",
		},
		[]string{"status"}, // "success" / "error"
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers Prometheus provider and pipeline metrics.
// Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderErrorsTotal)
	prometheus.MustRegister(DocumentsProcessedTotal)
	prometheus.MustRegister(ChunksEmbeddedTotal)
	prometheus.MustRegister(SearchesTotal)
	providerMetricsRegistered = true
}
