package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "parking"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Snapshot refresh metrics.
	RefreshRuns      *prometheus.CounterVec // labels: outcome={success,error}
	RefreshDuration  prometheus.Histogram
	RecordsLoaded    prometheus.Counter
	ParseDefects     prometheus.Counter
	SnapshotSize     prometheus.Gauge
	SnapshotAge      prometheus.Gauge
	RecordsPublished *prometheus.CounterVec // labels: sink={kafka,sqlite}
	RefreshRunning   prometheus.Gauge

	// Query metrics.
	Queries       *prometheus.CounterVec // labels: by={coordinate,address}, outcome={success,not_found,invalid,error}
	QueryDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Snapshot refresh attempts by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-parse-publish refresh.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Total raw location records fetched from the source.",
		}),
		ParseDefects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_defects_total",
			Help:      "Total malformed time fields found while parsing records.",
		}),
		SnapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_locations",
			Help:      "Number of locations in the active snapshot.",
		}),
		SnapshotAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_loaded_timestamp_seconds",
			Help:      "Unix time the active snapshot was built.",
		}),
		RecordsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Locations written to each downstream sink.",
		}, []string{"sink"}),
		RefreshRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_loop_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Spot queries by lookup kind and outcome.",
		}, []string{"by", "outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of a spot query including timeline expansion.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when address lookup is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RefreshRuns,
		m.RefreshDuration,
		m.RecordsLoaded,
		m.ParseDefects,
		m.SnapshotSize,
		m.SnapshotAge,
		m.RecordsPublished,
		m.RefreshRunning,
		m.Queries,
		m.QueryDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
