package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// System metrics
	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_memory_bytes",
		Help: "Current system memory usage",
	})

	SystemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_goroutines",
		Help: "Number of goroutines",
	})

	// Ingestion metrics
	DocumentsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_documents_ingested_total",
			Help: "Documents uploaded and extracted, by format",
		},
		[]string{"format"},
	)

	SearchHitsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "viewer_search_hits_total",
		Help: "Saved-search hits accumulated across hit listings",
	})

	// Pipeline client metrics
	PipelineRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "viewer_pipeline_request_duration_seconds",
			Help: "Latency of Palantir pipeline requests",
		},
		[]string{"endpoint"},
	)

	PipelineErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewer_pipeline_errors_total",
			Help: "Failed Palantir pipeline requests",
		},
		[]string{"endpoint"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Number of cache misses",
		},
		[]string{"cache_type"},
	)
)

// UpdateSystemMetrics updates system-level metrics
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SystemMemoryUsage.Set(float64(m.Alloc))
	SystemGoroutines.Set(float64(runtime.NumGoroutine()))
}
