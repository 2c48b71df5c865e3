package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the service.
type Metrics struct {
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	CacheLookups     *prometheus.CounterVec   // labels: cache={hourly,monthly,states}, result={hit,miss}
	RowsDropped      *prometheus.CounterVec   // labels: source
	SchedulerRuns    prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "precip",
			Name:      "provider_requests_total",
			Help:      "Upstream provider fetches by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "precip",
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "precip",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by cache and result.",
		}, []string{"cache", "result"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "precip",
			Name:      "rows_dropped_total",
			Help:      "Raw rows dropped during normalization, by source provider.",
		}, []string{"source"}),
		SchedulerRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "precip",
			Name:      "scheduler_runs_total",
			Help:      "Completed cache warm runs.",
		}),
	}

	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.CacheLookups,
		m.RowsDropped,
		m.SchedulerRuns,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "precip", Name: "provider_requests_total"}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "precip", Name: "provider_request_duration_seconds"}, []string{"provider"}),
		CacheLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "precip", Name: "cache_lookups_total"}, []string{"cache", "result"}),
		RowsDropped:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "precip", Name: "rows_dropped_total"}, []string{"source"}),
		SchedulerRuns:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "precip", Name: "scheduler_runs_total"}),
	}
}
