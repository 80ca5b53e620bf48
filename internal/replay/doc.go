// Package replay checks child reconciliation against a naive model.
//
// A replay generates random delta streams for several child regions that
// share one parent, applies them through dom.ChildVec to a dry document,
// and after every flush compares the physical children with the list the
// model predicts. It also checks that a flush only touches nodes of the
// regions that changed since the previous flush, and that every dropped
// child was released exactly once.
//
// The silk replay command runs many seeds in parallel; the package tests
// drive the same checker from gopter properties.
package replay
