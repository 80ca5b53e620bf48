package render

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/silk/pkg/tree"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithMetrics records flush statistics into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithTracer wraps every flush in a span from tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Scheduler) {
		s.tracer = tracer
	}
}

// WithDepther sets how node depths are resolved. By default the painter
// is used if it implements tree.Depther; otherwise every mutation has
// depth 0.
func WithDepther(d tree.Depther) Option {
	return func(s *Scheduler) {
		s.depther = d
	}
}
