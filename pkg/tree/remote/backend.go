package remote

import (
	"github.com/vango-dev/silk/pkg/protocol"
	"github.com/vango-dev/silk/pkg/tree"
	"github.com/vango-dev/silk/pkg/tree/dry"
)

// Backend records tree mutations as patches. Node ids, depths and the
// strictness checks come from a shadow dry.Document, so a mutation that
// would panic there is never recorded.
type Backend struct {
	shadow  *dry.Document
	patches []protocol.Patch
	seq     uint64
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{shadow: dry.New()}
}

// Shadow returns the server-side copy of the tree.
func (b *Backend) Shadow() *dry.Document {
	return b.shadow
}

func (b *Backend) record(p protocol.Patch) {
	b.patches = append(b.patches, p)
}

// CreateElement implements tree.Backend.
func (b *Backend) CreateElement(ns tree.Namespace, tag string) tree.Node {
	n := b.shadow.NewElement(ns, tag)
	b.record(protocol.Patch{Op: protocol.PatchCreateElement, Node: n.ID(), Namespace: string(ns), Tag: tag})
	return n
}

// CreateText implements tree.Backend.
func (b *Backend) CreateText(text string) tree.Node {
	n := b.shadow.NewText(text)
	b.record(protocol.Patch{Op: protocol.PatchCreateText, Node: n.ID(), Value: text})
	return n
}

// AppendChild implements tree.Backend.
func (b *Backend) AppendChild(parent, child tree.Node) {
	b.shadow.AppendChild(parent, child)
	b.record(protocol.Patch{Op: protocol.PatchAppendChild, Parent: parent.ID(), Node: child.ID()})
}

// InsertChildBefore implements tree.Backend.
func (b *Backend) InsertChildBefore(parent, child, next tree.Node) {
	b.shadow.InsertChildBefore(parent, child, next)
	var ref uint64
	if next != nil {
		ref = next.ID()
	}
	b.record(protocol.Patch{Op: protocol.PatchInsertBefore, Parent: parent.ID(), Node: child.ID(), Ref: ref})
}

// ReplaceChild implements tree.Backend.
func (b *Backend) ReplaceChild(parent, newChild, oldChild tree.Node) {
	b.shadow.ReplaceChild(parent, newChild, oldChild)
	b.record(protocol.Patch{Op: protocol.PatchReplaceChild, Parent: parent.ID(), Node: newChild.ID(), Ref: oldChild.ID()})
}

// RemoveChild implements tree.Backend.
func (b *Backend) RemoveChild(parent, child tree.Node) {
	b.shadow.RemoveChild(parent, child)
	b.record(protocol.Patch{Op: protocol.PatchRemoveChild, Parent: parent.ID(), Node: child.ID()})
}

// ClearChildren implements tree.Backend.
func (b *Backend) ClearChildren(parent tree.Node) {
	b.shadow.ClearChildren(parent)
	b.record(protocol.Patch{Op: protocol.PatchClearChildren, Parent: parent.ID()})
}

// SetAttribute implements tree.Backend.
func (b *Backend) SetAttribute(node tree.Node, name, value string) {
	b.shadow.SetAttribute(node, name, value)
	b.record(protocol.Patch{Op: protocol.PatchSetAttr, Node: node.ID(), Name: name, Value: value})
}

// RemoveAttribute implements tree.Backend.
func (b *Backend) RemoveAttribute(node tree.Node, name string) {
	b.shadow.RemoveAttribute(node, name)
	b.record(protocol.Patch{Op: protocol.PatchRemoveAttr, Node: node.ID(), Name: name})
}

// SetText implements tree.Backend.
func (b *Backend) SetText(node tree.Node, text string) {
	b.shadow.SetText(node, text)
	b.record(protocol.Patch{Op: protocol.PatchSetText, Node: node.ID(), Value: text})
}

// Depth implements tree.Depther.
func (b *Backend) Depth(node tree.Node) int {
	return b.shadow.Depth(node)
}

// ScheduleBeforeNextPaint implements tree.Painter. Callbacks run on the
// next call to Paint.
func (b *Backend) ScheduleBeforeNextPaint(fn func()) {
	b.shadow.ScheduleBeforeNextPaint(fn)
}

// Paint runs the scheduled callbacks and returns how many ran.
func (b *Backend) Paint() int {
	return b.shadow.Paint()
}

// Pending returns the number of patches recorded since the last frame.
func (b *Backend) Pending() int {
	return len(b.patches)
}

// NextSeq returns the sequence number of the next frame.
func (b *Backend) NextSeq() uint64 {
	return b.seq + 1
}

// TakeFrame returns the recorded patches as the next frame, or nil if
// nothing was recorded.
func (b *Backend) TakeFrame() *protocol.PatchesFrame {
	if len(b.patches) == 0 {
		return nil
	}
	b.seq++
	pf := &protocol.PatchesFrame{Seq: b.seq, Patches: b.patches}
	b.patches = nil
	return pf
}

// SnapshotFrame returns a frame that rebuilds the whole shadow tree,
// detached nodes included, and drops the patches recorded so far.
func (b *Backend) SnapshotFrame() *protocol.PatchesFrame {
	var patches []protocol.Patch
	for _, root := range b.shadow.Roots() {
		patches = appendSubtree(patches, root)
	}
	b.patches = nil
	b.seq++
	return &protocol.PatchesFrame{Seq: b.seq, Patches: patches}
}

func appendSubtree(patches []protocol.Patch, n *dry.Node) []protocol.Patch {
	if n.Kind() == dry.TextNode {
		return append(patches, protocol.Patch{Op: protocol.PatchCreateText, Node: n.ID(), Value: n.Text()})
	}
	patches = append(patches, protocol.Patch{
		Op:        protocol.PatchCreateElement,
		Node:      n.ID(),
		Namespace: string(n.Namespace()),
		Tag:       n.Tag(),
	})
	for _, a := range n.Attrs() {
		patches = append(patches, protocol.Patch{Op: protocol.PatchSetAttr, Node: n.ID(), Name: a.Name, Value: a.Value})
	}
	for _, c := range n.Children() {
		patches = appendSubtree(patches, c)
		patches = append(patches, protocol.Patch{Op: protocol.PatchAppendChild, Parent: n.ID(), Node: c.ID()})
	}
	return patches
}
