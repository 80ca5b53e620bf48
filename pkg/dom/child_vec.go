package dom

import (
	"slices"

	"github.com/vango-dev/silk/internal/errors"
	"github.com/vango-dev/silk/pkg/signalvec"
	"github.com/vango-dev/silk/pkg/tree"
)

// ChildVec keeps one group of a parent in step with an ordered list of
// children, one diff at a time.
type ChildVec struct {
	rt       *Runtime
	parent   tree.Node
	groups   *ChildGroups
	group    int
	children []Child
}

// NewChildVec binds a ChildVec to group of groups.
func NewChildVec(rt *Runtime, parent tree.Node, groups *ChildGroups, group int) *ChildVec {
	return &ChildVec{rt: rt, parent: parent, groups: groups, group: group}
}

// Len returns the number of children.
func (v *ChildVec) Len() int {
	return len(v.children)
}

// Children returns a copy of the children, in order.
func (v *ChildVec) Children() []Child {
	return slices.Clone(v.children)
}

// Apply applies one diff.
func (v *ChildVec) Apply(d signalvec.VecDiff[Child]) {
	switch d.Kind {
	case signalvec.KindReplace:
		v.Replace(d.Values)
	case signalvec.KindInsertAt:
		v.InsertAt(d.Index, d.Value)
	case signalvec.KindUpdateAt:
		v.SetAt(d.Index, d.Value)
	case signalvec.KindRemoveAt:
		v.RemoveAt(d.Index)
	case signalvec.KindMove:
		v.Move(d.Index, d.To)
	case signalvec.KindPush:
		v.Push(d.Value)
	case signalvec.KindPop:
		v.Pop()
	case signalvec.KindClear:
		v.Clear()
	}
}

// Replace swaps the whole list. The new children are inserted in one
// batch. Old children that are not part of the new list are released.
func (v *ChildVec) Replace(values []Child) {
	old := v.clear()
	v.children = slices.Clone(values)
	releaseDropped(old, v.children)

	if len(v.children) == 0 {
		v.groups.ClearFirstChild(v.group)
		return
	}

	nodes := nodesOf(v.children)
	v.groups.SetFirstChild(v.group, nodes[0])
	next := v.groups.NextGroupElem(v.group)
	parent, backend := v.parent, v.rt.backend
	v.rt.queue(parent, func() {
		for _, n := range nodes {
			backend.InsertChildBefore(parent, n, next)
		}
	})
}

// InsertAt inserts child at index. Inserting at Len is a Push.
func (v *ChildVec) InsertAt(index int, child Child) {
	v.checkIndex("InsertAt", index, true)
	v.insert(index, child)
}

func (v *ChildVec) insert(index int, child Child) {
	if index == len(v.children) {
		v.Push(child)
		return
	}

	node := child.Node()
	if index == 0 {
		v.groups.SetFirstChild(v.group, node)
	}
	next := v.children[index].Node()
	parent, backend := v.parent, v.rt.backend
	v.rt.queue(parent, func() {
		backend.InsertChildBefore(parent, node, next)
	})
	v.children = slices.Insert(v.children, index, child)
}

// SetAt replaces the child at index in place and releases the old one.
func (v *ChildVec) SetAt(index int, child Child) {
	v.checkIndex("SetAt", index, false)

	node := child.Node()
	if index == 0 {
		v.groups.SetFirstChild(v.group, node)
	}
	old := v.children[index]
	oldNode := old.Node()
	parent, backend := v.parent, v.rt.backend
	v.rt.queue(parent, func() {
		backend.ReplaceChild(parent, node, oldNode)
	})
	v.children[index] = child
	if old != child {
		old.Release()
	}
}

// RemoveAt removes and releases the child at index.
func (v *ChildVec) RemoveAt(index int) {
	v.checkIndex("RemoveAt", index, false)
	v.remove(index).Release()
}

func (v *ChildVec) remove(index int) Child {
	old := v.children[index]
	v.children = slices.Delete(v.children, index, index+1)

	oldNode := old.Node()
	parent, backend := v.parent, v.rt.backend
	v.rt.queue(parent, func() {
		backend.RemoveChild(parent, oldNode)
	})

	switch {
	case len(v.children) == 0:
		v.groups.ClearFirstChild(v.group)
	case index == 0:
		v.groups.SetFirstChild(v.group, v.children[0].Node())
	}
	return old
}

// Move relocates the child at from so it ends up at index to. It is a
// removal followed by an insertion; the child is not released.
func (v *ChildVec) Move(from, to int) {
	v.checkIndex("Move", from, false)
	v.checkIndex("Move", to, false)
	v.insert(to, v.remove(from))
}

// Push appends child after the last child of the group.
func (v *ChildVec) Push(child Child) {
	node := child.Node()
	if len(v.children) == 0 {
		v.groups.InsertOnlyChild(v.group, node)
	} else {
		v.groups.InsertLastChild(v.group, node)
	}
	v.children = append(v.children, child)
}

// Pop removes and releases the last child.
func (v *ChildVec) Pop() {
	n := len(v.children)
	if n == 0 {
		errors.Panic("E120", "Pop on empty list")
	}
	last := v.children[n-1]
	v.children = v.children[:n-1]
	if len(v.children) == 0 {
		v.groups.ClearFirstChild(v.group)
	}

	lastNode := last.Node()
	parent, backend := v.parent, v.rt.backend
	v.rt.queue(parent, func() {
		backend.RemoveChild(parent, lastNode)
	})
	last.Release()
}

// Clear removes and releases every child.
func (v *ChildVec) Clear() {
	for _, c := range v.clear() {
		c.Release()
	}
}

// clear empties the group and returns the removed children without
// releasing them. When the group is the parent's only group the parent's
// children are cleared in one operation.
func (v *ChildVec) clear() []Child {
	old := v.children
	v.children = nil
	v.groups.ClearFirstChild(v.group)
	if len(old) == 0 {
		return nil
	}

	parent, backend := v.parent, v.rt.backend
	if v.groups.IsSingleGroup() {
		v.rt.queue(parent, func() {
			backend.ClearChildren(parent)
		})
		return old
	}

	nodes := nodesOf(old)
	v.rt.queue(parent, func() {
		for _, n := range nodes {
			backend.RemoveChild(parent, n)
		}
	})
	return old
}

// ReleaseAll releases every child without touching the tree. It runs when
// the owning element is released.
func (v *ChildVec) ReleaseAll() {
	children := v.children
	v.children = nil
	for _, c := range children {
		c.Release()
	}
}

func (v *ChildVec) checkIndex(op string, index int, allowEnd bool) {
	limit := len(v.children)
	if allowEnd {
		limit++
	}
	if index < 0 || index >= limit {
		errors.Panic("E120", "%s(%d) on len %d", op, index, len(v.children))
	}
}

func nodesOf(children []Child) []tree.Node {
	nodes := make([]tree.Node, len(children))
	for i, c := range children {
		nodes[i] = c.Node()
	}
	return nodes
}

// releaseDropped releases every child in old that is not in kept.
func releaseDropped(old, kept []Child) {
	if len(old) == 0 {
		return
	}
	keep := make(map[Child]struct{}, len(kept))
	for _, c := range kept {
		keep[c] = struct{}{}
	}
	for _, c := range old {
		if _, ok := keep[c]; !ok {
			c.Release()
		}
	}
}
