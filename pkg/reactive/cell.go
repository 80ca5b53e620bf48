package reactive

import (
	"slices"

	"github.com/vango-dev/silk/internal/errors"
)

// borrowExclusive marks a cell that is being written.
const borrowExclusive = -1

// cell is the shared state behind every signal handle.
type cell[T any] struct {
	id    uint64
	value T

	// borrow is >0 while readers hold the value, borrowExclusive while it
	// is being written, and 0 otherwise.
	borrow int

	// refs counts live read handles. The cell is torn down at zero.
	refs int
	dead bool

	// dependents run after every write, in registration order.
	dependents []*registration

	// unlinks remove this cell's registrations from its sources.
	unlinks []func()
}

// registration is one entry in a cell's dependent list.
type registration struct {
	notify  func()
	removed bool
}

// source is the type-erased view of a cell used when linking derived cells.
type source interface {
	retain()
	release()
	addDependent(notify func()) *registration
	removeDependent(reg *registration)
}

func newCell[T any](initial T) *cell[T] {
	return &cell[T]{
		id:    nextID(),
		value: initial,
		refs:  1,
	}
}

func (c *cell[T]) borrowShared(op string) {
	if c.borrow == borrowExclusive {
		errors.Panic("E101", "%s of cell %d while it is being written", op, c.id)
	}
	c.borrow++
}

func (c *cell[T]) releaseShared() {
	c.borrow--
}

func (c *cell[T]) borrowMut(op string) {
	if c.borrow != 0 {
		errors.Panic("E101", "%s of cell %d while it is borrowed", op, c.id)
	}
	c.borrow = borrowExclusive
}

func (c *cell[T]) releaseMut() {
	c.borrow = 0
}

// read runs fn with a shared borrow of the current value.
func (c *cell[T]) read(fn func(*T)) {
	c.borrowShared("read")
	defer c.releaseShared()
	fn(&c.value)
}

func (c *cell[T]) current() T {
	var v T
	c.read(func(p *T) { v = *p })
	return v
}

// mutate runs fn with an exclusive borrow and then propagates.
// It is a no-op on a torn-down cell.
func (c *cell[T]) mutate(fn func(*T)) {
	if c.dead {
		return
	}
	func() {
		c.borrowMut("write")
		defer c.releaseMut()
		fn(&c.value)
	}()
	c.updateDependents()
}

func (c *cell[T]) set(v T) {
	c.mutate(func(p *T) { *p = v })
}

// updateDependents runs every live dependent. The list is copied first so
// dependents may register or remove entries while it runs. Entries added
// during the walk are skipped: they were initialized from the new value.
func (c *cell[T]) updateDependents() {
	if len(c.dependents) == 0 {
		return
	}
	deps := slices.Clone(c.dependents)

	c.borrowShared("propagate")
	defer c.releaseShared()

	for _, d := range deps {
		if c.dead {
			return
		}
		if d.removed {
			continue
		}
		d.notify()
	}
}

func (c *cell[T]) retain() {
	c.refs++
}

func (c *cell[T]) release() {
	c.refs--
	if c.refs > 0 || c.dead {
		return
	}
	c.dead = true

	unlinks := c.unlinks
	c.unlinks = nil
	for _, unlink := range unlinks {
		unlink()
	}

	var zero T
	c.value = zero
}

func (c *cell[T]) addDependent(notify func()) *registration {
	reg := &registration{notify: notify}
	c.dependents = append(c.dependents, reg)
	return reg
}

func (c *cell[T]) removeDependent(reg *registration) {
	reg.removed = true
	if i := slices.Index(c.dependents, reg); i >= 0 {
		c.dependents = slices.Delete(c.dependents, i, i+1)
	}
}

// link registers notify on src on behalf of child. The child keeps src
// alive until the child is torn down, at which point the registration is
// removed and src is released.
func link[U any](child *cell[U], src source, notify func()) {
	src.retain()
	reg := src.addDependent(func() {
		if child.dead {
			return
		}
		notify()
	})
	child.unlinks = append(child.unlinks, func() {
		src.removeDependent(reg)
		src.release()
	})
}

// derive creates a cell holding compute() and recomputes it whenever any of
// the sources changes.
func derive[R any](compute func() R, sources ...source) *ReadSignal[R] {
	child := newCell(compute())
	for _, src := range sources {
		link(child, src, func() {
			child.set(compute())
		})
	}
	return &ReadSignal[R]{c: child}
}
