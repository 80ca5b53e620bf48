package remote

import (
	"log/slog"
	"time"
)

// Default session settings.
const (
	DefaultPaintInterval = 16 * time.Millisecond
	DefaultWriteTimeout  = 10 * time.Second
	DefaultQueueSize     = 256
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger. The session id is added to every record.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMetrics records session statistics into m.
func WithMetrics(m *Metrics) SessionOption {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithPaintInterval sets how often scheduled paints run.
func WithPaintInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		s.interval = d
	}
}

// WithWriteTimeout sets the deadline for each frame write.
func WithWriteTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.writeTimeout = d
	}
}

// WithQueueSize sets how many submitted tasks may wait.
func WithQueueSize(n int) SessionOption {
	return func(s *Session) {
		s.queueSize = n
	}
}
