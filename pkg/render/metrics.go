package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures scheduler metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "silk").
	Namespace string

	// Subsystem is the metrics subsystem (default: "scheduler").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics holds the Prometheus collectors for a scheduler. One Metrics may
// be shared by many schedulers.
type Metrics struct {
	Flushes       prometheus.Counter
	Updates       prometheus.Counter
	Effects       prometheus.Counter
	PaintRequests prometheus.Counter
	BatchSize     prometheus.Histogram
	FlushDuration prometheus.Histogram
}

// NewMetrics registers scheduler metrics. Registering twice on the same
// registry panics, so create one Metrics per registry.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "silk"
	}
	if config.Subsystem == "" {
		config.Subsystem = "scheduler"
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		Flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),
		Updates: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of tree mutations applied",
			ConstLabels: config.ConstLabels,
		}),
		Effects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_total",
			Help:        "Total number of after-flush effects run",
			ConstLabels: config.ConstLabels,
		}),
		PaintRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "paint_requests_total",
			Help:        "Total number of flushes requested from the painter",
			ConstLabels: config.ConstLabels,
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_size",
			Help:        "Number of mutations per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8),
		}),
		FlushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Time spent in one flush",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
}
