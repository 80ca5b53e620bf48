package reactive

import (
	"encoding/json"

	"github.com/vango-dev/silk/internal/errors"
)

// Readable is implemented by *Signal and *ReadSignal. Derivations accept
// either without taking an extra reader on the source.
type Readable[T any] interface {
	// Current returns a copy of the current value.
	Current() T

	cellRef() *cell[T]
}

// Signal owns a new cell. It is like a variable that updates its
// dependents when written.
type Signal[T any] struct {
	r ReadSignal[T]
}

// NewSignal creates a signal holding initial.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{r: ReadSignal[T]{c: newCell(initial)}}
}

// Read returns a new read handle sharing the cell.
func (s *Signal[T]) Read() *ReadSignal[T] {
	return s.r.Clone()
}

// Write returns a write handle. It does not keep the cell alive.
func (s *Signal[T]) Write() *WriteSignal[T] {
	return &WriteSignal[T]{c: s.r.live("Write")}
}

// Current returns a copy of the current value.
func (s *Signal[T]) Current() T {
	return s.r.Current()
}

// ID returns the unique identifier of the underlying cell.
func (s *Signal[T]) ID() uint64 {
	return s.r.c.id
}

// Release drops the signal's own reader.
func (s *Signal[T]) Release() {
	s.r.Release()
}

func (s *Signal[T]) cellRef() *cell[T] {
	return s.r.cellRef()
}

// MarshalJSON encodes the current value.
func (s *Signal[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Current())
}

// UnmarshalJSON decodes a value into the signal. A zero Signal gets a new
// cell holding the value; otherwise the value is set and dependents are
// updated.
func (s *Signal[T]) UnmarshalJSON(data []byte) error {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if s.r.c == nil {
		s.r = ReadSignal[T]{c: newCell(value)}
		return nil
	}
	s.Write().Set(value)
	return nil
}

// ReadSignal is a shared read handle. The cell stays alive while at least
// one handle has not been released.
type ReadSignal[T any] struct {
	c        *cell[T]
	released bool
}

func (r *ReadSignal[T]) live(op string) *cell[T] {
	if r.released {
		errors.Panic("E102", "%s on released handle of cell %d", op, r.c.id)
	}
	return r.c
}

// Current returns a copy of the current value.
func (r *ReadSignal[T]) Current() T {
	return r.live("Current").current()
}

// With runs fn with a borrowed pointer to the current value. fn must not
// modify the value or write to the signal.
func (r *ReadSignal[T]) With(fn func(*T)) {
	r.live("With").read(fn)
}

// MarshalJSON encodes the current value.
func (r *ReadSignal[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Current())
}

// Clone returns another handle on the same cell.
func (r *ReadSignal[T]) Clone() *ReadSignal[T] {
	c := r.live("Clone")
	c.retain()
	return &ReadSignal[T]{c: c}
}

// ID returns the unique identifier of the underlying cell.
func (r *ReadSignal[T]) ID() uint64 {
	return r.c.id
}

// Release drops this handle. Releasing the same handle twice is a no-op.
func (r *ReadSignal[T]) Release() {
	if r.released {
		return
	}
	r.released = true
	r.c.release()
}

// Alive reports whether the cell still has readers.
func (r *ReadSignal[T]) Alive() bool {
	return !r.c.dead
}

func (r *ReadSignal[T]) cellRef() *cell[T] {
	return r.live("derive")
}

// WriteSignal writes into a cell without keeping it alive.
type WriteSignal[T any] struct {
	c *cell[T]
}

// Set replaces the value and updates dependents.
func (w *WriteSignal[T]) Set(value T) {
	w.c.set(value)
}

// Replace sets the value to fn(current) and updates dependents.
func (w *WriteSignal[T]) Replace(fn func(T) T) {
	w.c.mutate(func(p *T) { *p = fn(*p) })
}

// Mutate modifies the value in place and updates dependents.
func (w *WriteSignal[T]) Mutate(fn func(*T)) {
	w.c.mutate(fn)
}

// Alive reports whether writes still reach the cell.
func (w *WriteSignal[T]) Alive() bool {
	return !w.c.dead
}
