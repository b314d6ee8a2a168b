package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quakewatch"

// Metrics holds the Prometheus counters, histograms, and gauges for the poller.
type Metrics struct {
	PollsTotal       *prometheus.CounterVec // labels: outcome={ok,empty,failed}
	RecordsFetched   prometheus.Counter
	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	Diagnostics      *prometheus.CounterVec // labels: message
	PollerRunning    prometheus.Gauge

	PollDuration    prometheus.Histogram
	AverageDepthKm  prometheus.Gauge
	LastPollRecords prometheus.Gauge
}

// NewMetrics creates and registers all poller metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PollsTotal,
		m.RecordsFetched,
		m.RecordsPublished,
		m.PublishErrors,
		m.Diagnostics,
		m.PollerRunning,
		m.PollDuration,
		m.AverageDepthKm,
		m.LastPollRecords,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Feed polls by outcome.",
		}, []string{"outcome"}),
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Earthquake records returned by the feed after filtering.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "New earthquake records written to the sink.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed batch publishes.",
		}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Degraded-path diagnostics by message.",
		}, []string{"message"}),
		PollerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poller_running",
			Help:      "1 when the poller is active, 0 when shut down.",
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of a complete fetch-publish cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AverageDepthKm: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "average_depth_km",
			Help:      "Mean hypocenter depth of the last poll.",
		}),
		LastPollRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_poll_records",
			Help:      "Records returned by the last poll.",
		}),
	}
}
