package signalvec

import (
	"slices"

	"github.com/vango-dev/silk/internal/errors"
	"github.com/vango-dev/silk/pkg/reactive"
)

// Source produces a diff stream. Subscribe delivers a Replace with the
// current contents first and then every later change, synchronously, until
// the returned subscription is released.
type Source[T any] interface {
	Subscribe(fn func(VecDiff[T])) reactive.Releaser
}

// MutableVec is an ordered list that announces every change to its
// subscribers. Subscribers run in subscription order, synchronously from
// the modifying call, and must not modify the vector themselves.
type MutableVec[T any] struct {
	values    []T
	subs      []*subscription[T]
	notifying bool
}

type subscription[T any] struct {
	vec     *MutableVec[T]
	fn      func(VecDiff[T])
	removed bool
}

// Release stops delivery. Releasing twice is a no-op.
func (s *subscription[T]) Release() {
	if s.removed {
		return
	}
	s.removed = true
	if i := slices.Index(s.vec.subs, s); i >= 0 {
		s.vec.subs = slices.Delete(s.vec.subs, i, i+1)
	}
}

// NewMutableVec creates a vector holding a copy of values.
func NewMutableVec[T any](values ...T) *MutableVec[T] {
	return &MutableVec[T]{values: slices.Clone(values)}
}

// Subscribe implements Source.
func (v *MutableVec[T]) Subscribe(fn func(VecDiff[T])) reactive.Releaser {
	sub := &subscription[T]{vec: v, fn: fn}
	v.subs = append(v.subs, sub)
	fn(Replace(slices.Clone(v.values)))
	return sub
}

// Len returns the number of elements.
func (v *MutableVec[T]) Len() int {
	return len(v.values)
}

// At returns the element at index i.
func (v *MutableVec[T]) At(i int) T {
	checkIndex("At", i, len(v.values), false)
	return v.values[i]
}

// Values returns a copy of the contents.
func (v *MutableVec[T]) Values() []T {
	return slices.Clone(v.values)
}

func (v *MutableVec[T]) Replace(values []T) {
	v.apply(Replace(slices.Clone(values)))
}

func (v *MutableVec[T]) InsertAt(i int, value T) {
	v.apply(InsertAt(i, value))
}

func (v *MutableVec[T]) SetAt(i int, value T) {
	v.apply(UpdateAt(i, value))
}

// RemoveAt removes and returns the element at index i.
func (v *MutableVec[T]) RemoveAt(i int) T {
	removed := v.At(i)
	v.apply(RemoveAt[T](i))
	return removed
}

func (v *MutableVec[T]) Move(from, to int) {
	v.apply(Move[T](from, to))
}

func (v *MutableVec[T]) Push(value T) {
	v.apply(Push(value))
}

// Pop removes and returns the last element.
func (v *MutableVec[T]) Pop() T {
	if len(v.values) == 0 {
		errors.Panic("E120", "Pop on empty list")
	}
	last := v.values[len(v.values)-1]
	v.apply(Pop[T]())
	return last
}

func (v *MutableVec[T]) Clear() {
	v.apply(Clear[T]())
}

// Apply applies an arbitrary diff and forwards it to subscribers.
func (v *MutableVec[T]) Apply(d VecDiff[T]) {
	if d.Kind == KindReplace {
		d.Values = slices.Clone(d.Values)
	}
	v.apply(d)
}

func (v *MutableVec[T]) apply(d VecDiff[T]) {
	if v.notifying {
		errors.Panic("E104", "%s while notifying", d.Kind)
	}
	v.values = Apply(v.values, d)

	if len(v.subs) == 0 {
		return
	}
	subs := slices.Clone(v.subs)
	v.notifying = true
	defer func() { v.notifying = false }()
	for _, s := range subs {
		if s.removed {
			continue
		}
		s.fn(d)
	}
}

// mapped is a Source whose element values are converted by f.
type mapped[T, U any] struct {
	src Source[T]
	f   func(T) U
}

// Map returns a Source that delivers src's diffs with f applied to every
// element value. f runs once per element per diff and per subscriber.
func Map[T, U any](src Source[T], f func(T) U) Source[U] {
	return mapped[T, U]{src: src, f: f}
}

func (m mapped[T, U]) Subscribe(fn func(VecDiff[U])) reactive.Releaser {
	return m.src.Subscribe(func(d VecDiff[T]) {
		fn(MapDiff(d, m.f))
	})
}

// Always is a Source that never changes after its initial contents.
type Always[T any] []T

// Subscribe delivers the values once.
func (a Always[T]) Subscribe(fn func(VecDiff[T])) reactive.Releaser {
	fn(Replace(slices.Clone([]T(a))))
	return noop{}
}

type noop struct{}

func (noop) Release() {}
