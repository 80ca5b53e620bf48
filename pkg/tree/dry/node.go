package dry

import (
	"slices"
	"strings"

	"github.com/vango-dev/silk/internal/errors"
	"github.com/vango-dev/silk/pkg/tree"
)

// Kind distinguishes elements from text nodes.
type Kind uint8

const (
	ElementNode Kind = iota
	TextNode
)

// Attr is a name/value pair. Attributes keep the order they were first
// set in.
type Attr struct {
	Name  string
	Value string
}

// Node is a node in a Document.
type Node struct {
	id       uint64
	kind     Kind
	ns       tree.Namespace
	tag      string
	text     string
	attrs    []Attr
	parent   *Node
	children []*Node
}

// ID implements tree.Node.
func (n *Node) ID() uint64 { return n.id }

func (n *Node) Kind() Kind                { return n.kind }
func (n *Node) Namespace() tree.Namespace { return n.ns }
func (n *Node) Tag() string               { return n.tag }

// Text returns the content of a text node, or the concatenated text of an
// element's descendants.
func (n *Node) Text() string {
	if n.kind == TextNode {
		return n.text
	}
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.Text())
	}
	return sb.String()
}

// Parent returns the parent, or nil for a detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns a copy of the attributes.
func (n *Node) Attrs() []Attr { return slices.Clone(n.attrs) }

// String renders the subtree in a compact markup-like form, for tests and
// debugging. Text is not escaped.
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n.kind == TextNode {
		sb.WriteString(n.text)
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.tag)
	for _, a := range n.attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(a.Value)
		sb.WriteByte('"')
	}
	if len(n.children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, c := range n.children {
		c.write(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.tag)
	sb.WriteByte('>')
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	n.parent = nil
}

// mustIndex returns the position of child in n's child list.
func (n *Node) mustIndex(op string, child *Node) int {
	if child.parent == n {
		if i := slices.Index(n.children, child); i >= 0 {
			return i
		}
	}
	errors.Panic("E123", "%s: node %d is not a child of node %d", op, child.id, n.id)
	return -1
}
