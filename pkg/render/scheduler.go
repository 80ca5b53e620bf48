package render

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/silk/internal/errors"
	"github.com/vango-dev/silk/pkg/reactive"
	"github.com/vango-dev/silk/pkg/tree"
)

// TracerName is the name of the tracer flush spans are recorded with.
const TracerName = "github.com/vango-dev/silk/pkg/render"

// update is one queued mutation. node is nil for untagged mutations.
type update struct {
	node tree.Node
	fn   func()
}

// Scheduler batches tree mutations and effects for one rendering context.
// It is not safe for concurrent use: every call must come from the
// goroutine that owns the tree.
type Scheduler struct {
	painter tree.Painter
	depther tree.Depther
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	updates []update
	effects []func()

	// requested is set while a flush is scheduled on the painter.
	requested bool
	flushing  bool
	flushes   uint64
}

// New creates a scheduler that requests flushes from painter.
func New(painter tree.Painter, opts ...Option) *Scheduler {
	s := &Scheduler{painter: painter}
	for _, opt := range opts {
		opt(s)
	}
	if s.depther == nil {
		if d, ok := painter.(tree.Depther); ok {
			s.depther = d
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(TracerName)
	}
	return s
}

// QueueUpdate queues a mutation that is not tied to a node.
func (s *Scheduler) QueueUpdate(fn func()) {
	s.QueueNodeUpdate(nil, fn)
}

// QueueNodeUpdate queues a mutation of node. The mutation is ordered by
// node's depth when the batch is flushed.
func (s *Scheduler) QueueNodeUpdate(node tree.Node, fn func()) {
	if fn == nil {
		errors.Panic("E130", "QueueUpdate")
	}
	s.updates = append(s.updates, update{node: node, fn: fn})
	s.request()
}

// AfterFlush queues an effect to run after the mutations of the next
// flush.
func (s *Scheduler) AfterFlush(fn func()) {
	if fn == nil {
		errors.Panic("E130", "AfterFlush")
	}
	s.effects = append(s.effects, fn)
	s.request()
}

// MemoFrame starts a frame on cache and ends it after the next flush.
func (s *Scheduler) MemoFrame(cache *reactive.MemoCache) *reactive.MemoFrame {
	f := cache.Frame()
	s.AfterFlush(f.End)
	return f
}

// Pending reports whether mutations or effects are waiting for a flush.
func (s *Scheduler) Pending() bool {
	return len(s.updates) > 0 || len(s.effects) > 0
}

// Flushes returns the number of completed flushes.
func (s *Scheduler) Flushes() uint64 {
	return s.flushes
}

func (s *Scheduler) request() {
	if s.requested {
		return
	}
	s.requested = true
	if s.metrics != nil {
		s.metrics.PaintRequests.Inc()
	}
	s.painter.ScheduleBeforeNextPaint(s.Flush)
}

// Flush runs every queued mutation, then every queued effect. It is
// normally called by the painter. A call made from inside a flush returns
// immediately; the work it would have done is already scheduled.
func (s *Scheduler) Flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	defer func() { s.flushing = false }()

	// Anything queued from here on belongs to the next flush.
	s.requested = false
	updates := s.updates
	s.updates = nil

	start := time.Now()
	_, span := s.tracer.Start(context.Background(), "silk.flush",
		trace.WithAttributes(attribute.Int("silk.updates", len(updates))))
	defer span.End()

	if len(updates) > 1 {
		s.sortByDepth(updates)
	}
	for _, u := range updates {
		u.fn()
	}

	effects := s.effects
	s.effects = nil
	for _, fn := range effects {
		fn()
	}

	s.flushes++
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("silk.effects", len(effects)))

	if s.metrics != nil {
		s.metrics.Flushes.Inc()
		s.metrics.Updates.Add(float64(len(updates)))
		s.metrics.Effects.Add(float64(len(effects)))
		s.metrics.BatchSize.Observe(float64(len(updates)))
		s.metrics.FlushDuration.Observe(elapsed.Seconds())
	}

	s.logger.Debug("flush",
		"updates", len(updates),
		"effects", len(effects),
		"deferred", len(s.updates),
		"duration", elapsed)
}

// sortByDepth stable-sorts updates shallow first. Depths are resolved
// once, before any mutation in the batch runs.
func (s *Scheduler) sortByDepth(updates []update) {
	if s.depther == nil {
		return
	}
	type ranked struct {
		depth int
		u     update
	}
	ranks := make([]ranked, len(updates))
	for i, u := range updates {
		ranks[i].u = u
		if u.node != nil {
			ranks[i].depth = s.depther.Depth(u.node)
		}
	}
	slices.SortStableFunc(ranks, func(a, b ranked) int {
		return a.depth - b.depth
	})
	for i := range ranks {
		updates[i] = ranks[i].u
	}
}
