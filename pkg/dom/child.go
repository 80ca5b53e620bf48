package dom

import (
	"github.com/vango-dev/silk/pkg/reactive"
	"github.com/vango-dev/silk/pkg/tree"
)

// Child is anything that can be placed under an element. Release stops
// the child's bindings; it does not detach the node.
type Child interface {
	Node() tree.Node
	Release()
}

// Text is a text node.
type Text struct {
	rt    *Runtime
	node  tree.Node
	scope *reactive.Scope
}

// Text creates a text node.
func (rt *Runtime) Text(text string) *Text {
	return &Text{
		rt:    rt,
		node:  rt.backend.CreateText(text),
		scope: reactive.NewScope(nil),
	}
}

// TextSignal creates a text node that follows sig.
func (rt *Runtime) TextSignal(sig reactive.Readable[string]) *Text {
	t := rt.Text("")
	t.scope.Keep(reactive.Observe(sig, t.Set))
	return t
}

// Node implements Child.
func (t *Text) Node() tree.Node { return t.node }

// Set queues a change of the text.
func (t *Text) Set(text string) {
	t.rt.queue(t.node, func() {
		t.rt.backend.SetText(t.node, text)
	})
}

// Release implements Child.
func (t *Text) Release() {
	t.scope.Dispose()
}
