package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It includes counters for API requests and refresh runs, gauges for the
// cached collections and the last successful refresh, and histograms for
// request and refresh duration.
type Metrics struct {
	Requests          *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	Runs              *prometheus.CounterVec
	LastSuccessfulRun prometheus.Gauge
	RunDuration       prometheus.Histogram
	CachedItems       *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		Requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_api_requests_total",
			Help: "Total number of requests sent to the employee API.",
		}, []string{"method", "resource", "status"}),
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_api_request_duration_seconds",
			Help:    "Duration of requests sent to the employee API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource"}), // resource: 'employees', 'qualifications'
		Runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_refresh_runs_total",
			Help: "Total times the cache refresh has successfully or unsuccessfully completed.",
		}, []string{"status"}),
		LastSuccessfulRun: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "athena_last_successful_refresh_timestamp",
			Help: "Last time when the cache refresh completed successfully",
		}),
		RunDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "athena_refresh_duration_seconds",
			Help: "Measures how long a full cache refresh takes",
		}),
		CachedItems: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "athena_cached_items",
			Help: "Number of records currently held in the local caches.",
		}, []string{"collection"}), // collection: 'employees', 'qualifications', 'filtered'
	}

	metrics.Runs.WithLabelValues("success")
	metrics.Runs.WithLabelValues("failure")

	return metrics
}
