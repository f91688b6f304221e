package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// fetch and analysis pipeline.
type Metrics struct {
	RecordsFetched *prometheus.CounterVec // labels: source={noaa,usda}
	FetchErrors    *prometheus.CounterVec // labels: source={noaa,usda}
	ChunksSkipped  *prometheus.CounterVec // labels: source={noaa,usda}
	FetchRunning   prometheus.Gauge

	APIRequestDuration *prometheus.HistogramVec // labels: source={noaa,usda}

	// Normalization diagnostics. The variant label disambiguates runs that
	// analyze the same input more than once.
	RecordsDropped *prometheus.CounterVec // labels: variant, reason={bad_date,bad_value,bad_kind,unknown_state}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsFetched,
		m.FetchErrors,
		m.ChunksSkipped,
		m.FetchRunning,
		m.APIRequestDuration,
		m.RecordsDropped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropshock",
			Name:      "records_fetched_total",
			Help:      "Raw records retrieved from upstream APIs.",
		}, []string{"source"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropshock",
			Name:      "fetch_errors_total",
			Help:      "Upstream API request failures after retries.",
		}, []string{"source"}),
		ChunksSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropshock",
			Name:      "chunks_skipped_total",
			Help:      "Per-station or per-year fetch chunks abandoned after errors.",
		}, []string{"source"}),
		FetchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cropshock",
			Name:      "fetch_running",
			Help:      "1 while a data fetch is in progress, 0 otherwise.",
		}),
		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cropshock",
			Name:      "api_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cropshock",
			Name:      "records_dropped_total",
			Help:      "Records excluded during normalization, by reason.",
		}, []string{"variant", "reason"}),
	}
}
