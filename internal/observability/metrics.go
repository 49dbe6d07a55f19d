package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// constraint pipeline.
type Metrics struct {
	ObservationsConsumed prometheus.Counter
	SnapshotsProduced    prometheus.Counter
	DataErrors           prometheus.Counter
	SequenceErrors       prometheus.Counter
	PipelineRunning      prometheus.Gauge
	ActiveTimelines      prometheus.Gauge

	// Per-cycle metrics.
	CycleDuration prometheus.Histogram
	BatchSize     prometheus.Histogram

	// Regime assignments by label.
	RegimeAssigned *prometheus.CounterVec // label: regime

	// Climatology fallback usage.
	ClimoFallbacks prometheus.Counter
	ClimoEnabled   prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ObservationsConsumed,
		m.SnapshotsProduced,
		m.DataErrors,
		m.SequenceErrors,
		m.PipelineRunning,
		m.ActiveTimelines,
		m.CycleDuration,
		m.BatchSize,
		m.RegimeAssigned,
		m.ClimoFallbacks,
		m.ClimoEnabled,
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
		ObservationsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_constraint",
			Name:      "observations_consumed_total",
			Help:      "Total advisory observations read from the source topic.",
		}),
		SnapshotsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_constraint",
			Name:      "snapshots_produced_total",
			Help:      "Total constraint snapshots written to the sink topic.",
		}),
		DataErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_constraint",
			Name:      "data_errors_total",
			Help:      "Advisory observations rejected by boundary validation or scoring.",
		}),
		SequenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_constraint",
			Name:      "sequence_errors_total",
			Help:      "Snapshot appends rejected for out-of-order or duplicate timestamps.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone_constraint",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		ActiveTimelines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone_constraint",
			Name:      "active_timelines",
			Help:      "Number of storms with an active (non-archived) timeline.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cyclone_constraint",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete extract-score-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cyclone_constraint",
			Name:      "batch_size",
			Help:      "Number of observations per batch extracted from Kafka.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 40, 50},
		}),
		RegimeAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cyclone_constraint",
			Name:      "regime_assigned_total",
			Help:      "Regime labels assigned, by regime.",
		}, []string{"regime"}),
		ClimoFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cyclone_constraint",
			Name:      "climo_fallbacks_total",
			Help:      "Observations whose environment was filled from climatology.",
		}),
		ClimoEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cyclone_constraint",
			Name:      "climo_enabled",
			Help:      "1 when the climatology fallback estimator is enabled, 0 otherwise.",
		}),
	}
}
