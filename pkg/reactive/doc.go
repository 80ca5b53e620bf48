// Package reactive implements silk's push-based signal engine.
//
// A cell holds one value plus an ordered list of dependents. Writing a cell
// replaces its value and then runs every dependent synchronously, in
// registration order. Dependents created by Map, Zip2 and friends write into
// their own derived cell, which in turn runs its dependents, so a single Set
// propagates through the whole graph on one call stack.
//
// # Handles
//
// Cells are reached through handles:
//
//   - *Signal[T] owns a new cell and counts as one reader.
//   - *ReadSignal[T] shares the cell. Clone adds a reader, Release drops one.
//   - *WriteSignal[T] does not keep the cell alive. Writing through it after
//     every reader has been released is a silent no-op.
//
// When the last reader of a derived cell is released, the cell is torn down:
// its registrations are removed from its sources and the sources are
// released in turn. Writes to a source never reach a torn-down derived cell.
//
//	count := reactive.NewSignal(1)
//	doubled := reactive.Map(count, func(n int) int { return n * 2 })
//	count.Write().Set(5)
//	doubled.Current() // 10
//	doubled.Release() // count no longer propagates to the doubled cell
//
// # Borrowing
//
// Reads take a shared borrow of the cell and writes an exclusive one. A
// write that lands while the cell is borrowed, for example a Map callback
// writing back into its own source, panics with a *errors.Violation (code
// E101) instead of recursing forever.
//
// # Memoization
//
// MemoCache keeps values across render frames. Cache returns the value
// computed in the previous frame for the same key, and values not requested
// during a frame are dropped when the frame ends.
//
// # Concurrency
//
// The engine is single-threaded. A graph of cells, and the scopes and memo
// caches around it, must only be used from one goroutine at a time.
package reactive
