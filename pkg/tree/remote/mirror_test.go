package remote

import (
	"errors"
	"testing"

	"github.com/vango-dev/silk/pkg/protocol"
)

func frame(seq uint64, patches ...protocol.Patch) *protocol.PatchesFrame {
	return &protocol.PatchesFrame{Seq: seq, Patches: patches}
}

func TestMirrorApply(t *testing.T) {
	m := NewMirror()
	err := m.Apply(frame(1,
		protocol.Patch{Op: protocol.PatchCreateElement, Node: 1, Tag: "p"},
		protocol.Patch{Op: protocol.PatchCreateText, Node: 2, Value: "a"},
		protocol.Patch{Op: protocol.PatchCreateText, Node: 3, Value: "b"},
		protocol.Patch{Op: protocol.PatchAppendChild, Parent: 1, Node: 2},
		protocol.Patch{Op: protocol.PatchInsertBefore, Parent: 1, Node: 3, Ref: 2},
		protocol.Patch{Op: protocol.PatchSetAttr, Node: 1, Name: "title", Value: "t"},
	), false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	err = m.Apply(frame(2,
		protocol.Patch{Op: protocol.PatchSetText, Node: 2, Value: "A"},
		protocol.Patch{Op: protocol.PatchCreateText, Node: 4, Value: "c"},
		protocol.Patch{Op: protocol.PatchReplaceChild, Parent: 1, Node: 4, Ref: 3},
		protocol.Patch{Op: protocol.PatchRemoveAttr, Node: 1, Name: "title"},
	), false)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	p, _ := m.Document().Lookup(1)
	if p.String() != "<p>cA</p>" {
		t.Errorf("mirror = %s", p)
	}

	if err := m.Apply(frame(3, protocol.Patch{Op: protocol.PatchClearChildren, Parent: 1}), false); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.String() != "<p/>" || m.LastSeq() != 3 {
		t.Errorf("mirror = %s at seq %d", p, m.LastSeq())
	}
}

func TestMirrorRejectsBadFrames(t *testing.T) {
	base := []protocol.Patch{
		{Op: protocol.PatchCreateElement, Node: 1, Tag: "div"},
		{Op: protocol.PatchCreateElement, Node: 2, Tag: "span"},
		{Op: protocol.PatchCreateText, Node: 3, Value: "t"},
		{Op: protocol.PatchAppendChild, Parent: 1, Node: 2},
	}

	tests := []struct {
		name  string
		seq   uint64
		patch protocol.Patch
		want  error
	}{
		{"gap", 3, protocol.Patch{Op: protocol.PatchClearChildren, Parent: 1}, ErrSequenceGap},
		{"unknown_parent", 2, protocol.Patch{Op: protocol.PatchAppendChild, Parent: 9, Node: 3}, ErrUnknownNode},
		{"unknown_child", 2, protocol.Patch{Op: protocol.PatchRemoveChild, Parent: 1, Node: 9}, ErrUnknownNode},
		{"duplicate", 2, protocol.Patch{Op: protocol.PatchCreateText, Node: 2}, ErrInvalidPatch},
		{"not_a_child", 2, protocol.Patch{Op: protocol.PatchRemoveChild, Parent: 1, Node: 3}, ErrInvalidPatch},
		{"bad_ref", 2, protocol.Patch{Op: protocol.PatchInsertBefore, Parent: 1, Node: 3, Ref: 1}, ErrInvalidPatch},
		{"cycle", 2, protocol.Patch{Op: protocol.PatchAppendChild, Parent: 2, Node: 1}, ErrInvalidPatch},
		{"text_parent", 2, protocol.Patch{Op: protocol.PatchAppendChild, Parent: 3, Node: 2}, ErrInvalidPatch},
		{"set_text_on_element", 2, protocol.Patch{Op: protocol.PatchSetText, Node: 1, Value: "x"}, ErrInvalidPatch},
		{"attr_on_text", 2, protocol.Patch{Op: protocol.PatchSetAttr, Node: 3, Name: "a"}, ErrInvalidPatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMirror()
			if err := m.Apply(frame(1, base...), false); err != nil {
				t.Fatalf("base: %v", err)
			}
			err := m.Apply(frame(tc.seq, tc.patch), false)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if m.LastSeq() != 1 {
				t.Errorf("LastSeq advanced to %d", m.LastSeq())
			}
		})
	}
}

func TestMirrorSnapshotResets(t *testing.T) {
	m := NewMirror()
	m.Apply(frame(1, protocol.Patch{Op: protocol.PatchCreateText, Node: 1, Value: "old"}), false)

	if err := m.Apply(frame(7, protocol.Patch{Op: protocol.PatchCreateText, Node: 1, Value: "new"}), true); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	n, _ := m.Document().Lookup(1)
	if n.Text() != "new" || m.LastSeq() != 7 {
		t.Errorf("text %q at seq %d", n.Text(), m.LastSeq())
	}
	if err := m.Apply(frame(8), false); err != nil {
		t.Errorf("frame after snapshot: %v", err)
	}
}

func TestMirrorHandleFrameRejectsOtherTypes(t *testing.T) {
	m := NewMirror()
	err := m.HandleFrame(protocol.NewFrame(protocol.FrameAck, protocol.EncodeAck(&protocol.Ack{})))
	if !errors.Is(err, ErrInvalidPatch) {
		t.Fatalf("err = %v", err)
	}
}
