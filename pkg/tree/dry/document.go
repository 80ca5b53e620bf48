// Package dry is an in-memory tree backend. Nodes are plain Go values, so
// the tree can be inspected directly. It is used off-platform, as the
// shadow tree of the remote backend, and in tests.
//
// A Document is strict: naming a reference node that is not a child of the
// given parent panics, so reconciliation bugs surface immediately.
package dry

import (
	"cmp"
	"slices"

	"github.com/vango-dev/silk/pkg/tree"
)

// Document owns a set of nodes and the pending paint callbacks.
type Document struct {
	nextID uint64
	nodes  map[uint64]*Node

	pending  []func()
	requests int
}

// New creates an empty document.
func New() *Document {
	return &Document{nodes: make(map[uint64]*Node)}
}

// Lookup returns the node with the given id, if the document created it.
func (d *Document) Lookup(id uint64) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Len returns the number of nodes the document has created.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Roots returns the nodes that have no parent, ordered by id. Detached
// nodes count as roots.
func (d *Document) Roots() []*Node {
	var roots []*Node
	for _, n := range d.nodes {
		if n.parent == nil {
			roots = append(roots, n)
		}
	}
	slices.SortFunc(roots, func(a, b *Node) int { return cmp.Compare(a.id, b.id) })
	return roots
}

func (d *Document) newNode(n *Node) *Node {
	d.nextID++
	n.id = d.nextID
	d.nodes[n.id] = n
	return n
}

// CreateElement implements tree.Backend.
func (d *Document) CreateElement(ns tree.Namespace, tag string) tree.Node {
	return d.NewElement(ns, tag)
}

// NewElement is CreateElement returning the concrete node.
func (d *Document) NewElement(ns tree.Namespace, tag string) *Node {
	return d.newNode(&Node{kind: ElementNode, ns: ns, tag: tag})
}

// CreateText implements tree.Backend.
func (d *Document) CreateText(text string) tree.Node {
	return d.NewText(text)
}

// NewText is CreateText returning the concrete node.
func (d *Document) NewText(text string) *Node {
	return d.newNode(&Node{kind: TextNode, text: text})
}

// CreateElementWithID creates an element with a caller-chosen id. It is
// used to mirror a tree whose ids were assigned elsewhere.
func (d *Document) CreateElementWithID(id uint64, ns tree.Namespace, tag string) *Node {
	return d.withID(id, &Node{kind: ElementNode, ns: ns, tag: tag})
}

// CreateTextWithID creates a text node with a caller-chosen id.
func (d *Document) CreateTextWithID(id uint64, text string) *Node {
	return d.withID(id, &Node{kind: TextNode, text: text})
}

func (d *Document) withID(id uint64, n *Node) *Node {
	n.id = id
	d.nodes[id] = n
	if id > d.nextID {
		d.nextID = id
	}
	return n
}

// Forget drops a detached node and its descendants from the id index.
func (d *Document) Forget(n *Node) {
	if n.parent != nil {
		return
	}
	d.forget(n)
}

func (d *Document) forget(n *Node) {
	delete(d.nodes, n.id)
	for _, c := range n.children {
		d.forget(c)
	}
}

// AppendChild implements tree.Backend. A child with a parent is moved.
func (d *Document) AppendChild(parent, child tree.Node) {
	p, c := asNode(parent), asNode(child)
	c.detach()
	c.parent = p
	p.children = append(p.children, c)
}

// InsertChildBefore implements tree.Backend.
func (d *Document) InsertChildBefore(parent, child, next tree.Node) {
	if next == nil {
		d.AppendChild(parent, child)
		return
	}
	p, c, n := asNode(parent), asNode(child), asNode(next)
	if c == n {
		return
	}
	p.mustIndex("InsertChildBefore", n)
	c.detach()
	c.parent = p
	p.children = slices.Insert(p.children, p.mustIndex("InsertChildBefore", n), c)
}

// ReplaceChild implements tree.Backend.
func (d *Document) ReplaceChild(parent, newChild, oldChild tree.Node) {
	p, nc, oc := asNode(parent), asNode(newChild), asNode(oldChild)
	if nc == oc {
		return
	}
	p.mustIndex("ReplaceChild", oc)
	nc.detach()
	i := p.mustIndex("ReplaceChild", oc)
	p.children[i] = nc
	nc.parent = p
	oc.parent = nil
}

// RemoveChild implements tree.Backend.
func (d *Document) RemoveChild(parent, child tree.Node) {
	p, c := asNode(parent), asNode(child)
	i := p.mustIndex("RemoveChild", c)
	p.children = slices.Delete(p.children, i, i+1)
	c.parent = nil
}

// ClearChildren implements tree.Backend.
func (d *Document) ClearChildren(parent tree.Node) {
	p := asNode(parent)
	for _, c := range p.children {
		c.parent = nil
	}
	p.children = nil
}

// SetAttribute implements tree.Backend.
func (d *Document) SetAttribute(node tree.Node, name, value string) {
	n := asNode(node)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// RemoveAttribute implements tree.Backend.
func (d *Document) RemoveAttribute(node tree.Node, name string) {
	n := asNode(node)
	n.attrs = slices.DeleteFunc(n.attrs, func(a Attr) bool { return a.Name == name })
}

// SetText implements tree.Backend.
func (d *Document) SetText(node tree.Node, text string) {
	n := asNode(node)
	if n.kind != TextNode {
		panic("dry: SetText on element <" + n.tag + ">")
	}
	n.text = text
}

// Depth implements tree.Depther.
func (d *Document) Depth(node tree.Node) int {
	depth := 0
	for p := asNode(node).parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// ScheduleBeforeNextPaint implements tree.Painter. Callbacks run on the
// next call to Paint.
func (d *Document) ScheduleBeforeNextPaint(fn func()) {
	d.requests++
	d.pending = append(d.pending, fn)
}

// Paint runs the callbacks scheduled so far and returns how many ran.
// Callbacks scheduled while painting wait for the next Paint.
func (d *Document) Paint() int {
	pending := d.pending
	d.pending = nil
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// PaintRequests returns the number of ScheduleBeforeNextPaint calls.
func (d *Document) PaintRequests() int {
	return d.requests
}

// PendingPaints returns the number of callbacks waiting for Paint.
func (d *Document) PendingPaints() int {
	return len(d.pending)
}

func asNode(n tree.Node) *Node {
	node, ok := n.(*Node)
	if !ok {
		panic("dry: node from another backend")
	}
	return node
}
