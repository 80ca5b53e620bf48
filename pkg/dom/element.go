package dom

import (
	"github.com/vango-dev/silk/pkg/reactive"
	"github.com/vango-dev/silk/pkg/signalvec"
	"github.com/vango-dev/silk/pkg/tree"
)

// Element is an element node together with the bindings that keep it up
// to date. Builder methods return the element so calls can be chained.
type Element struct {
	rt     *Runtime
	node   tree.Node
	groups *ChildGroups
	scope  *reactive.Scope
}

// Element creates an HTML element.
func (rt *Runtime) Element(tag string) *Element {
	return rt.ElementNS(tree.HTML, tag)
}

// ElementNS creates an element in namespace ns.
func (rt *Runtime) ElementNS(ns tree.Namespace, tag string) *Element {
	node := rt.backend.CreateElement(ns, tag)
	return &Element{
		rt:     rt,
		node:   node,
		groups: NewChildGroups(rt, node),
		scope:  reactive.NewScope(nil),
	}
}

// Node implements Child.
func (e *Element) Node() tree.Node { return e.node }

// Scope returns the scope that owns the element's bindings. Handles kept
// by it are released with the element.
func (e *Element) Scope() *reactive.Scope { return e.scope }

// Groups returns the element's child groups.
func (e *Element) Groups() *ChildGroups { return e.groups }

// Release stops every binding of the element and releases its children.
func (e *Element) Release() {
	e.scope.Dispose()
}

// Child appends a static child. The child is released with the element.
func (e *Element) Child(c Child) *Element {
	e.groups.AppendNewGroup(c.Node())
	e.scope.Keep(c)
	return e
}

// Text appends a static text node.
func (e *Element) Text(text string) *Element {
	return e.Child(e.rt.Text(text))
}

// TextSignal appends a text node that follows sig.
func (e *Element) TextSignal(sig reactive.Readable[string]) *Element {
	return e.Child(e.rt.TextSignal(sig))
}

// ChildSignal adds a region holding the current child of sig. When sig
// changes, the previous child is removed and released.
func (e *Element) ChildSignal(sig reactive.Readable[Child]) *Element {
	return e.OptionalChild(sig)
}

// OptionalChild adds a region holding the current child of sig, or
// nothing while sig holds nil.
func (e *Element) OptionalChild(sig reactive.Readable[Child]) *Element {
	group := e.groups.NewGroup()
	var current Child

	e.scope.OnCleanup(func() {
		if current != nil {
			current.Release()
			current = nil
		}
	})
	e.scope.Keep(reactive.Observe(sig, func(next Child) {
		if next == current {
			return
		}
		if next == nil {
			e.groups.RemoveChild(group)
		} else {
			e.groups.UpsertOnlyChild(group, next.Node())
		}
		if current != nil {
			current.Release()
		}
		current = next
	}))
	return e
}

// Children adds a region that follows the diff stream of src.
func (e *Element) Children(src signalvec.Source[Child]) *Element {
	group := e.groups.NewGroup()
	vec := NewChildVec(e.rt, e.node, e.groups, group)
	// Cleanups run in reverse: the subscription stops before the children
	// are released.
	e.scope.OnCleanup(vec.ReleaseAll)
	e.scope.Keep(src.Subscribe(vec.Apply))
	return e
}

// Attr sets a static attribute.
func (e *Element) Attr(name, value string) *Element {
	e.rt.backend.SetAttribute(e.node, name, value)
	return e
}

// AttrSignal binds an attribute to sig.
func (e *Element) AttrSignal(name string, sig reactive.Readable[string]) *Element {
	e.scope.Keep(reactive.Observe(sig, func(value string) {
		e.rt.queue(e.node, func() {
			e.rt.backend.SetAttribute(e.node, name, value)
		})
	}))
	return e
}

// BoolAttrSignal binds a boolean attribute to sig: present with an empty
// value while sig is true, removed while it is false.
func (e *Element) BoolAttrSignal(name string, sig reactive.Readable[bool]) *Element {
	e.scope.Keep(reactive.Observe(sig, func(on bool) {
		e.rt.queue(e.node, func() {
			if on {
				e.rt.backend.SetAttribute(e.node, name, "")
			} else {
				e.rt.backend.RemoveAttribute(e.node, name)
			}
		})
	}))
	return e
}

// Effect runs fn with the element's node after the next flush.
func (e *Element) Effect(fn func(node tree.Node)) *Element {
	node := e.node
	e.rt.scheduler.AfterFlush(func() { fn(node) })
	return e
}

// EffectSignal runs fn with the element's node after the flush that
// follows every change of sig, starting with its current value.
func EffectSignal[T any](e *Element, sig reactive.Readable[T], fn func(node tree.Node, value T)) *Element {
	node := e.node
	e.scope.Keep(reactive.Observe(sig, func(value T) {
		e.rt.scheduler.AfterFlush(func() { fn(node, value) })
	}))
	return e
}
