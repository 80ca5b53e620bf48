// Package render schedules tree mutations and post-mutation effects.
//
// UI bindings never touch a tree.Backend directly. They queue closures on
// a Scheduler, and the Scheduler runs them in one batch before the next
// paint:
//
//	s := render.New(doc)
//	s.QueueNodeUpdate(parent, func() { doc.AppendChild(parent, child) })
//	s.AfterFlush(func() { log.Println("painted") })
//
// # Flush Order
//
// A flush takes every queued mutation at once. When the batch holds more
// than one mutation, it is stable-sorted by the depth of the node each
// mutation was queued for, so ancestors change before descendants.
// Mutations queued without a node sort as depth 0 and otherwise keep
// their queue order. Effects run after every mutation in the batch.
//
// Work queued while a flush is running is never dropped: it is collected
// into the next batch and a new paint is requested.
//
// # Memoization
//
// MemoFrame starts a frame on a reactive.MemoCache and ends it as an
// effect, so the cache generation flips only after the mutations built
// from that frame have been applied.
package render
