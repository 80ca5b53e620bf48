// Package dom builds element trees whose children, attributes and text
// follow reactive signals.
//
// Every element owns a ChildGroups value that splits its children into
// independent regions. A static child occupies a region of its own, a
// signal-driven child occupies one region that holds at most one node, and
// a signalvec.Source drives a ChildVec that keeps one region in step with
// an ordered list:
//
//	rt := dom.NewRuntime(doc, render.New(doc))
//	items := signalvec.NewMutableVec[dom.Child]()
//	list := rt.Element("ul").
//	    Text("header").
//	    Children(items).
//	    Text("footer")
//	items.Push(rt.Element("li").Text("first"))
//
// Bookkeeping happens immediately. Tree mutations are queued on the
// runtime's render.Scheduler, tagged with the parent node, and applied at
// the next flush. Static children are appended right away only while no
// dynamic region comes before them.
//
// # Ownership
//
// An element owns its bindings and its children. Releasing an element
// stops its bindings and releases its children. A child removed by a
// ChildVec or replaced in a signal-driven region is released; a child
// moved within a ChildVec is not.
package dom
