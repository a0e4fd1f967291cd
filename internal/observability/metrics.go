package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// warning pipeline.
type Metrics struct {
	CyclesTotal     prometheus.Counter
	CycleDuration   prometheus.Histogram
	PipelineRunning prometheus.Gauge

	BasinsProcessed prometheus.Counter
	BasinsFailed    prometheus.Counter
	BasinDuration   prometheus.Histogram

	AlertsEmitted    *prometheus.CounterVec // label: level
	EstimationMethod *prometheus.CounterVec // label: method

	StationsOnline  prometheus.Gauge
	RadarPixels     prometheus.Gauge
	FeedFetchErrors *prometheus.CounterVec // label: feed={stations,radar}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.PipelineRunning,
		m.BasinsProcessed,
		m.BasinsFailed,
		m.BasinDuration,
		m.AlertsEmitted,
		m.EstimationMethod,
		m.StationsOnline,
		m.RadarPixels,
		m.FeedFetchErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "cycles_total",
			Help:      "Total processing cycles run.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_alert",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete estimate-route-classify cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_alert",
			Name:      "pipeline_running",
			Help:      "1 when the cycle coordinator is active, 0 when shut down.",
		}),
		BasinsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "basins_processed_total",
			Help:      "Total basin pipeline runs completed.",
		}),
		BasinsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "basins_failed_total",
			Help:      "Total basin runs rejected by parameter validation.",
		}),
		BasinDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_alert",
			Name:      "basin_duration_seconds",
			Help:      "Duration of a single basin's pipeline run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		AlertsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "alerts_emitted_total",
			Help:      "Alerts emitted by level.",
		}, []string{"level"}),
		EstimationMethod: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "estimation_method_total",
			Help:      "Basin rainfall estimations by method tag.",
		}, []string{"method"}),
		StationsOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_alert",
			Name:      "stations_online",
			Help:      "Online stations in the latest snapshot.",
		}),
		RadarPixels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_alert",
			Name:      "radar_pixels",
			Help:      "Radar pixels in the latest decoded grid.",
		}),
		FeedFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_alert",
			Name:      "feed_fetch_errors_total",
			Help:      "Upstream feed fetch failures by feed.",
		}, []string{"feed"}),
	}
}
