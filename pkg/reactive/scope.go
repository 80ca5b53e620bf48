package reactive

import "github.com/vango-dev/silk/internal/errors"

// Releaser is anything holding a reader or registration that must be
// dropped explicitly.
type Releaser interface {
	Release()
}

// Scope owns handles and cleanup functions for one piece of UI. When a
// Scope is disposed, its child scopes are disposed first and then every
// kept handle and cleanup runs in reverse registration order.
//
// Scopes form a hierarchy that mirrors the element tree.
type Scope struct {
	id uint64

	// parent is nil for a root scope.
	parent *Scope

	children []*Scope

	// cleanups run in reverse order on Dispose.
	cleanups []func()

	disposed bool
}

// NewScope creates a scope. If parent is non-nil the new scope is disposed
// together with it.
func NewScope(parent *Scope) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		if parent.disposed {
			errors.Panic("E103", "NewScope under disposed scope %d", parent.id)
		}
		parent.children = append(parent.children, s)
	}

	return s
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed returns true once Dispose has run.
func (s *Scope) IsDisposed() bool {
	return s.disposed
}

// Keep releases r when the scope is disposed. On a disposed scope r is
// released immediately.
func (s *Scope) Keep(r Releaser) {
	s.OnCleanup(r.Release)
}

// OnCleanup registers fn to run when the scope is disposed. On a disposed
// scope fn runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if s.disposed {
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Release disposes the scope. It lets a Scope be kept by another scope.
func (s *Scope) Release() {
	s.Dispose()
}

// Dispose disposes child scopes (last created first) and then runs the
// cleanups in reverse order. Disposing twice is a no-op.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	children := s.children
	s.children = nil
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	cleanups := s.cleanups
	s.cleanups = nil
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

func (s *Scope) removeChild(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
