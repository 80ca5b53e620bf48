package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchCreateElement PatchOp = 0x01
	PatchCreateText    PatchOp = 0x02
	PatchAppendChild   PatchOp = 0x03
	PatchInsertBefore  PatchOp = 0x04
	PatchReplaceChild  PatchOp = 0x05
	PatchRemoveChild   PatchOp = 0x06
	PatchClearChildren PatchOp = 0x07
	PatchSetAttr       PatchOp = 0x08
	PatchRemoveAttr    PatchOp = 0x09
	PatchSetText       PatchOp = 0x0A
)

// ErrUnknownPatchOp is returned when decoding an unknown opcode.
var ErrUnknownPatchOp = errors.New("protocol: unknown patch op")

// String returns the string representation of the patch operation.
func (op PatchOp) String() string {
	switch op {
	case PatchCreateElement:
		return "CreateElement"
	case PatchCreateText:
		return "CreateText"
	case PatchAppendChild:
		return "AppendChild"
	case PatchInsertBefore:
		return "InsertBefore"
	case PatchReplaceChild:
		return "ReplaceChild"
	case PatchRemoveChild:
		return "RemoveChild"
	case PatchClearChildren:
		return "ClearChildren"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchSetText:
		return "SetText"
	default:
		return fmt.Sprintf("PatchOp(%#x)", uint8(op))
	}
}

// Patch is one tree mutation. Which fields are meaningful depends on Op;
// see the package documentation.
type Patch struct {
	Op PatchOp

	// Node is the node being created, attached, detached or modified. For
	// ReplaceChild it is the new child.
	Node uint64

	// Parent is the parent for structural operations.
	Parent uint64

	// Ref is the next sibling for InsertBefore (0 appends) and the old
	// child for ReplaceChild.
	Ref uint64

	Namespace string
	Tag       string
	Name      string
	Value     string
}

func (p Patch) String() string {
	switch p.Op {
	case PatchCreateElement:
		if p.Namespace != "" {
			return fmt.Sprintf("CreateElement(%d, %s:%s)", p.Node, p.Namespace, p.Tag)
		}
		return fmt.Sprintf("CreateElement(%d, %s)", p.Node, p.Tag)
	case PatchCreateText, PatchSetText:
		return fmt.Sprintf("%s(%d, %q)", p.Op, p.Node, p.Value)
	case PatchAppendChild, PatchRemoveChild:
		return fmt.Sprintf("%s(%d, %d)", p.Op, p.Parent, p.Node)
	case PatchInsertBefore, PatchReplaceChild:
		return fmt.Sprintf("%s(%d, %d, %d)", p.Op, p.Parent, p.Node, p.Ref)
	case PatchClearChildren:
		return fmt.Sprintf("ClearChildren(%d)", p.Parent)
	case PatchSetAttr:
		return fmt.Sprintf("SetAttr(%d, %s=%q)", p.Node, p.Name, p.Value)
	case PatchRemoveAttr:
		return fmt.Sprintf("RemoveAttr(%d, %s)", p.Node, p.Name)
	default:
		return p.Op.String()
	}
}

// EncodePatchTo appends one patch.
func EncodePatchTo(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	switch p.Op {
	case PatchCreateElement:
		e.WriteUvarint(p.Node)
		e.WriteString(p.Namespace)
		e.WriteString(p.Tag)
	case PatchCreateText, PatchSetText:
		e.WriteUvarint(p.Node)
		e.WriteString(p.Value)
	case PatchAppendChild, PatchRemoveChild:
		e.WriteUvarint(p.Parent)
		e.WriteUvarint(p.Node)
	case PatchInsertBefore, PatchReplaceChild:
		e.WriteUvarint(p.Parent)
		e.WriteUvarint(p.Node)
		e.WriteUvarint(p.Ref)
	case PatchClearChildren:
		e.WriteUvarint(p.Parent)
	case PatchSetAttr:
		e.WriteUvarint(p.Node)
		e.WriteString(p.Name)
		e.WriteString(p.Value)
	case PatchRemoveAttr:
		e.WriteUvarint(p.Node)
		e.WriteString(p.Name)
	}
}

// DecodePatchFrom reads one patch.
func DecodePatchFrom(d *Decoder) (Patch, error) {
	var p Patch
	op, err := d.ReadByte()
	if err != nil {
		return p, err
	}
	p.Op = PatchOp(op)

	// Operands in wire order for each op.
	var ids []*uint64
	var strs []*string
	switch p.Op {
	case PatchCreateElement:
		ids, strs = []*uint64{&p.Node}, []*string{&p.Namespace, &p.Tag}
	case PatchCreateText, PatchSetText:
		ids, strs = []*uint64{&p.Node}, []*string{&p.Value}
	case PatchAppendChild, PatchRemoveChild:
		ids = []*uint64{&p.Parent, &p.Node}
	case PatchInsertBefore, PatchReplaceChild:
		ids = []*uint64{&p.Parent, &p.Node, &p.Ref}
	case PatchClearChildren:
		ids = []*uint64{&p.Parent}
	case PatchSetAttr:
		ids, strs = []*uint64{&p.Node}, []*string{&p.Name, &p.Value}
	case PatchRemoveAttr:
		ids, strs = []*uint64{&p.Node}, []*string{&p.Name}
	default:
		return p, fmt.Errorf("%w: %#x", ErrUnknownPatchOp, op)
	}

	for _, id := range ids {
		if *id, err = d.ReadUvarint(); err != nil {
			return p, err
		}
	}
	for _, s := range strs {
		if *s, err = d.ReadString(); err != nil {
			return p, err
		}
	}
	return p, nil
}

// PatchesFrame is the payload of a FramePatches frame: the patches
// produced by one flush.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

func (pf *PatchesFrame) String() string {
	parts := make([]string, len(pf.Patches))
	for i, p := range pf.Patches {
		parts[i] = p.String()
	}
	return fmt.Sprintf("#%d [%s]", pf.Seq, strings.Join(parts, " "))
}

// EncodePatches encodes a PatchesFrame payload.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a PatchesFrame payload using e.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		EncodePatchTo(e, &pf.Patches[i])
	}
}

// DecodePatches decodes a PatchesFrame payload.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	n, err := d.ReadCount(MaxPatchesPerFrame)
	if err != nil {
		return nil, err
	}
	pf := &PatchesFrame{Seq: seq, Patches: make([]Patch, 0, n)}
	for i := 0; i < n; i++ {
		p, err := DecodePatchFrom(d)
		if err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
		pf.Patches = append(pf.Patches, p)
	}
	if err := d.done(); err != nil {
		return nil, err
	}
	return pf, nil
}
