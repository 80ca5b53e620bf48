package dom

import (
	"github.com/vango-dev/silk/internal/errors"
	"github.com/vango-dev/silk/pkg/tree"
)

// ChildGroups splits the children of one parent into ordered groups, so
// each dynamic region can find where its nodes belong without scanning the
// parent's child list.
//
// Each dynamic group has a slot holding its first physical node, or nil
// while the group is empty. A static child appended after a dynamic group
// also gets a slot, so it can serve as that group's insertion anchor.
type ChildGroups struct {
	rt     *Runtime
	parent tree.Node

	slots []tree.Node

	// lastIsDynamic is true if the last group can still change.
	lastIsDynamic bool
	// hasDynamic is true once any dynamic group exists.
	hasDynamic bool
	groupCount int
}

// NewChildGroups creates an empty set of groups for parent.
func NewChildGroups(rt *Runtime, parent tree.Node) *ChildGroups {
	return &ChildGroups{rt: rt, parent: parent}
}

// IsSingleGroup reports whether the parent has exactly one group, in
// which case that group owns every child.
func (g *ChildGroups) IsSingleGroup() bool {
	return g.groupCount == 1
}

// NewGroup allocates an empty dynamic group and returns its index.
func (g *ChildGroups) NewGroup() int {
	g.groupCount++
	g.lastIsDynamic = true
	g.hasDynamic = true
	g.slots = append(g.slots, nil)
	return len(g.slots) - 1
}

// Len returns the number of slots.
func (g *ChildGroups) Len() int {
	return len(g.slots)
}

// NextGroupElem returns the first node of the nearest non-empty group
// after index, or nil if every later group is empty.
func (g *ChildGroups) NextGroupElem(index int) tree.Node {
	g.check("NextGroupElem", index)
	for _, n := range g.slots[index+1:] {
		if n != nil {
			return n
		}
	}
	return nil
}

// AppendNewGroup appends child as a static group of its own, after all
// existing content. While no dynamic group precedes it the child is
// appended right away. Otherwise it is queued behind the mutations those
// groups have already queued, so it lands after their nodes.
func (g *ChildGroups) AppendNewGroup(child tree.Node) {
	if g.lastIsDynamic {
		g.slots = append(g.slots, child)
	}
	g.groupCount++
	// No index was handed out, so this group never changes.
	g.lastIsDynamic = false

	parent, backend := g.parent, g.rt.backend
	if !g.hasDynamic {
		backend.AppendChild(parent, child)
		return
	}
	g.rt.queue(parent, func() {
		backend.AppendChild(parent, child)
	})
}

// InsertOnlyChild places child in an empty group. The group must be
// empty.
func (g *ChildGroups) InsertOnlyChild(index int, child tree.Node) {
	g.check("InsertOnlyChild", index)
	if g.slots[index] != nil {
		errors.Panic("E122", "InsertOnlyChild(%d)", index)
	}
	g.UpsertOnlyChild(index, child)
}

// UpsertOnlyChild makes child the only node of a group, removing the
// previous node if there was one. It reports whether a node was removed.
func (g *ChildGroups) UpsertOnlyChild(index int, child tree.Node) bool {
	g.check("UpsertOnlyChild", index)
	existing := g.slots[index]
	g.slots[index] = child
	if existing != nil {
		g.queueRemove(existing)
	}
	g.InsertLastChild(index, child)
	return existing != nil
}

// InsertLastChild inserts child after the existing nodes of a group.
func (g *ChildGroups) InsertLastChild(index int, child tree.Node) {
	next := g.NextGroupElem(index)
	parent, backend := g.parent, g.rt.backend
	g.rt.queue(parent, func() {
		backend.InsertChildBefore(parent, child, next)
	})
}

// RemoveChild removes the node of a single-node group, if any.
func (g *ChildGroups) RemoveChild(index int) {
	g.check("RemoveChild", index)
	existing := g.slots[index]
	g.slots[index] = nil
	if existing != nil {
		g.queueRemove(existing)
	}
}

// SetFirstChild records child as the first node of a group. It does not
// touch the tree.
func (g *ChildGroups) SetFirstChild(index int, child tree.Node) {
	g.check("SetFirstChild", index)
	g.slots[index] = child
}

// ClearFirstChild records a group as empty. It does not touch the tree.
func (g *ChildGroups) ClearFirstChild(index int) {
	g.check("ClearFirstChild", index)
	g.slots[index] = nil
}

func (g *ChildGroups) queueRemove(child tree.Node) {
	parent, backend := g.parent, g.rt.backend
	g.rt.queue(parent, func() {
		backend.RemoveChild(parent, child)
	})
}

func (g *ChildGroups) check(op string, index int) {
	if index < 0 || index >= len(g.slots) {
		errors.Panic("E121", "%s(%d) with %d slots", op, index, len(g.slots))
	}
}
