// Package tree defines the capabilities the renderer needs from a concrete
// node tree. Implementations include an in-memory document (package dry)
// and a patch-recording backend for remote clients (package remote).
//
// A Backend is driven from a single goroutine. Operations are assumed to
// succeed when called with valid handles; a Backend may panic when a
// reference node does not belong to the named parent.
package tree

// Namespace is the XML namespace of an element. The zero value is HTML.
type Namespace string

const (
	HTML   Namespace = ""
	SVG    Namespace = "http://www.w3.org/2000/svg"
	MathML Namespace = "http://www.w3.org/1998/Math/MathML"
)

// Node is an opaque handle to a node owned by a Backend. Handles are only
// meaningful to the Backend that created them.
type Node interface {
	// ID is unique within the owning Backend.
	ID() uint64
}

// Backend creates and mutates nodes.
type Backend interface {
	CreateElement(ns Namespace, tag string) Node
	CreateText(text string) Node

	AppendChild(parent, child Node)

	// InsertChildBefore inserts child immediately before next. A nil next
	// appends.
	InsertChildBefore(parent, child, next Node)

	// ReplaceChild puts newChild where oldChild was.
	ReplaceChild(parent, newChild, oldChild Node)
	RemoveChild(parent, child Node)
	ClearChildren(parent Node)

	SetAttribute(node Node, name, value string)
	RemoveAttribute(node Node, name string)

	// SetText replaces the content of a text node.
	SetText(node Node, text string)
}

// Painter schedules work to run before the next paint. Callers are
// expected to coalesce requests; a Painter runs every callback it was
// given, once.
type Painter interface {
	ScheduleBeforeNextPaint(fn func())
}

// Depther reports the depth of a node below its root. A root has depth 0.
type Depther interface {
	Depth(node Node) int
}
