package remote

import (
	"errors"
	"fmt"

	"github.com/vango-dev/silk/pkg/protocol"
	"github.com/vango-dev/silk/pkg/tree"
	"github.com/vango-dev/silk/pkg/tree/dry"
)

// Mirror errors. After any of them the mirrored tree may be partially
// updated and the client should ask for a resync.
var (
	ErrSequenceGap  = errors.New("remote: frame out of sequence")
	ErrUnknownNode  = errors.New("remote: unknown node")
	ErrInvalidPatch = errors.New("remote: invalid patch")
)

// Mirror applies patch frames to a local document. Unlike the backend's
// shadow, a Mirror never panics on bad input: every patch is checked
// before it touches the document.
type Mirror struct {
	doc     *dry.Document
	lastSeq uint64
}

// NewMirror creates an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{doc: dry.New()}
}

// Document returns the mirrored tree. A snapshot frame replaces it.
func (m *Mirror) Document() *dry.Document { return m.doc }

// LastSeq returns the sequence number of the last frame applied.
func (m *Mirror) LastSeq() uint64 { return m.lastSeq }

// Roots returns the parentless nodes of the mirrored tree.
func (m *Mirror) Roots() []*dry.Node { return m.doc.Roots() }

// HandleFrame applies a FramePatches frame.
func (m *Mirror) HandleFrame(f *protocol.Frame) error {
	if f.Type != protocol.FramePatches {
		return fmt.Errorf("%w: frame type %s", ErrInvalidPatch, f.Type)
	}
	pf, err := protocol.DecodePatches(f.Payload)
	if err != nil {
		return err
	}
	return m.Apply(pf, f.Flags.Has(protocol.FlagSnapshot))
}

// Apply applies one frame. A snapshot frame starts a new document and
// may carry any sequence number; other frames must follow the last one.
func (m *Mirror) Apply(pf *protocol.PatchesFrame, snapshot bool) error {
	if snapshot {
		m.doc = dry.New()
	} else if pf.Seq != m.lastSeq+1 {
		return fmt.Errorf("%w: got %d, want %d", ErrSequenceGap, pf.Seq, m.lastSeq+1)
	}
	for i := range pf.Patches {
		if err := m.apply(&pf.Patches[i]); err != nil {
			return fmt.Errorf("patch %d %s: %w", i, pf.Patches[i], err)
		}
	}
	m.lastSeq = pf.Seq
	return nil
}

func (m *Mirror) apply(p *protocol.Patch) error {
	switch p.Op {
	case protocol.PatchCreateElement, protocol.PatchCreateText:
		if _, ok := m.doc.Lookup(p.Node); ok || p.Node == 0 {
			return fmt.Errorf("%w: node %d already exists", ErrInvalidPatch, p.Node)
		}
		if p.Op == protocol.PatchCreateElement {
			m.doc.CreateElementWithID(p.Node, tree.Namespace(p.Namespace), p.Tag)
		} else {
			m.doc.CreateTextWithID(p.Node, p.Value)
		}

	case protocol.PatchAppendChild:
		parent, child, err := m.attach(p.Parent, p.Node)
		if err != nil {
			return err
		}
		m.doc.AppendChild(parent, child)

	case protocol.PatchInsertBefore:
		parent, child, err := m.attach(p.Parent, p.Node)
		if err != nil {
			return err
		}
		if p.Ref == 0 {
			m.doc.AppendChild(parent, child)
			return nil
		}
		ref, err := m.childOf(parent, p.Ref)
		if err != nil {
			return err
		}
		m.doc.InsertChildBefore(parent, child, ref)

	case protocol.PatchReplaceChild:
		parent, child, err := m.attach(p.Parent, p.Node)
		if err != nil {
			return err
		}
		old, err := m.childOf(parent, p.Ref)
		if err != nil {
			return err
		}
		m.doc.ReplaceChild(parent, child, old)

	case protocol.PatchRemoveChild:
		parent, err := m.element(p.Parent)
		if err != nil {
			return err
		}
		child, err := m.childOf(parent, p.Node)
		if err != nil {
			return err
		}
		m.doc.RemoveChild(parent, child)

	case protocol.PatchClearChildren:
		parent, err := m.element(p.Parent)
		if err != nil {
			return err
		}
		m.doc.ClearChildren(parent)

	case protocol.PatchSetAttr, protocol.PatchRemoveAttr:
		n, err := m.element(p.Node)
		if err != nil {
			return err
		}
		if p.Op == protocol.PatchSetAttr {
			m.doc.SetAttribute(n, p.Name, p.Value)
		} else {
			m.doc.RemoveAttribute(n, p.Name)
		}

	case protocol.PatchSetText:
		n, err := m.lookup(p.Node)
		if err != nil {
			return err
		}
		if n.Kind() != dry.TextNode {
			return fmt.Errorf("%w: node %d is not text", ErrInvalidPatch, p.Node)
		}
		m.doc.SetText(n, p.Value)

	default:
		return fmt.Errorf("%w: op %s", ErrInvalidPatch, p.Op)
	}
	return nil
}

func (m *Mirror) lookup(id uint64) (*dry.Node, error) {
	n, ok := m.doc.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return n, nil
}

func (m *Mirror) element(id uint64) (*dry.Node, error) {
	n, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if n.Kind() != dry.ElementNode {
		return nil, fmt.Errorf("%w: node %d is not an element", ErrInvalidPatch, id)
	}
	return n, nil
}

// attach resolves a parent and a child about to be placed under it. The
// child may not be the parent or one of its ancestors.
func (m *Mirror) attach(parentID, childID uint64) (*dry.Node, *dry.Node, error) {
	parent, err := m.element(parentID)
	if err != nil {
		return nil, nil, err
	}
	child, err := m.lookup(childID)
	if err != nil {
		return nil, nil, err
	}
	for a := parent; a != nil; a = a.Parent() {
		if a == child {
			return nil, nil, fmt.Errorf("%w: node %d contains node %d", ErrInvalidPatch, childID, parentID)
		}
	}
	return parent, child, nil
}

func (m *Mirror) childOf(parent *dry.Node, id uint64) (*dry.Node, error) {
	n, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if n.Parent() != parent {
		return nil, fmt.Errorf("%w: node %d is not a child of node %d", ErrInvalidPatch, id, parent.ID())
	}
	return n, nil
}
