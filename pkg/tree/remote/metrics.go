package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures session metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "silk").
	Namespace string

	// Subsystem is the metrics subsystem (default: "remote").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Metrics holds the Prometheus collectors shared by all sessions.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	FramesSent     *prometheus.CounterVec
	FramesReceived *prometheus.CounterVec
	PatchesSent    prometheus.Counter
	BytesSent      prometheus.Counter
	TaskPanics     prometheus.Counter
	AckLag         prometheus.Histogram
}

// NewMetrics registers session metrics.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "silk"
	}
	if config.Subsystem == "" {
		config.Subsystem = "remote"
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of running sessions",
			ConstLabels: config.ConstLabels,
		}),
		FramesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Total number of frames sent, by frame type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
		FramesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_received_total",
			Help:        "Total number of frames received, by frame type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
		PatchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of patches sent",
			ConstLabels: config.ConstLabels,
		}),
		BytesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_sent_total",
			Help:        "Total number of bytes written to connections",
			ConstLabels: config.ConstLabels,
		}),
		TaskPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "task_panics_total",
			Help:        "Total number of submitted tasks that panicked",
			ConstLabels: config.ConstLabels,
		}),
		AckLag: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "ack_lag_frames",
			Help:        "Frames sent but not yet acknowledged, sampled on each ack",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 4, 8, 16, 32},
		}),
	}
}
