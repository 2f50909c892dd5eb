package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docfuse",
			Name:      "search_requests_total",
			Help:      "Total number of fused search requests",
		},
		[]string{"source"},
	)

	BackendResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docfuse",
			Name:      "backend_results_total",
			Help:      "Documents contributed per backend, by outcome",
		},
		[]string{"backend", "status"}, // status: "ok" / "error"
	)

	BackendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docfuse",
			Name:      "backend_duration_seconds",
			Help:      "Backend search call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"backend"},
	)

	PageFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docfuse",
			Name:      "page_fetch_total",
			Help:      "Page fetch attempts by outcome",
		},
		[]string{"status"}, // "ok" / "http_error" / "timeout" / "transport_error"
	)

	PageFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docfuse",
			Name:      "page_fetch_duration_seconds",
			Help:      "Page fetch and extraction duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	PageCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docfuse",
			Name:      "page_cache_total",
			Help:      "Extracted-page cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// RegisterSearchMetrics registers all search pipeline metrics.
// Called explicitly from the composition root (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(
		SearchRequestsTotal,
		BackendResultsTotal,
		BackendDuration,
		PageFetchTotal,
		PageFetchDuration,
		PageCacheTotal,
	)
}
