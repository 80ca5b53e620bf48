// Package signalvec carries changes to an ordered list as a stream of
// diffs, so a consumer can mirror the list without comparing snapshots.
package signalvec

import (
	"fmt"
	"slices"

	"github.com/vango-dev/silk/internal/errors"
)

// Kind identifies the type of a VecDiff.
type Kind uint8

const (
	KindReplace Kind = iota
	KindInsertAt
	KindUpdateAt
	KindRemoveAt
	KindMove
	KindPush
	KindPop
	KindClear
)

func (k Kind) String() string {
	switch k {
	case KindReplace:
		return "Replace"
	case KindInsertAt:
		return "InsertAt"
	case KindUpdateAt:
		return "UpdateAt"
	case KindRemoveAt:
		return "RemoveAt"
	case KindMove:
		return "Move"
	case KindPush:
		return "Push"
	case KindPop:
		return "Pop"
	case KindClear:
		return "Clear"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// VecDiff is one change to an ordered list.
type VecDiff[T any] struct {
	Kind Kind

	// Values is the new contents for Replace.
	Values []T

	// Index is the position for InsertAt, UpdateAt and RemoveAt, and the
	// source position for Move.
	Index int

	// To is the destination position for Move.
	To int

	// Value is the element for InsertAt, UpdateAt and Push.
	Value T
}

func Replace[T any](values []T) VecDiff[T] {
	return VecDiff[T]{Kind: KindReplace, Values: values}
}

func InsertAt[T any](index int, value T) VecDiff[T] {
	return VecDiff[T]{Kind: KindInsertAt, Index: index, Value: value}
}

func UpdateAt[T any](index int, value T) VecDiff[T] {
	return VecDiff[T]{Kind: KindUpdateAt, Index: index, Value: value}
}

func RemoveAt[T any](index int) VecDiff[T] {
	return VecDiff[T]{Kind: KindRemoveAt, Index: index}
}

// Move relocates the element at from so that it ends up at index to.
func Move[T any](from, to int) VecDiff[T] {
	return VecDiff[T]{Kind: KindMove, Index: from, To: to}
}

func Push[T any](value T) VecDiff[T] {
	return VecDiff[T]{Kind: KindPush, Value: value}
}

func Pop[T any]() VecDiff[T] {
	return VecDiff[T]{Kind: KindPop}
}

func Clear[T any]() VecDiff[T] {
	return VecDiff[T]{Kind: KindClear}
}

func (d VecDiff[T]) String() string {
	switch d.Kind {
	case KindReplace:
		return fmt.Sprintf("Replace(%v)", d.Values)
	case KindInsertAt, KindUpdateAt:
		return fmt.Sprintf("%s(%d, %v)", d.Kind, d.Index, d.Value)
	case KindRemoveAt:
		return fmt.Sprintf("RemoveAt(%d)", d.Index)
	case KindMove:
		return fmt.Sprintf("Move(%d, %d)", d.Index, d.To)
	case KindPush:
		return fmt.Sprintf("Push(%v)", d.Value)
	default:
		return d.Kind.String() + "()"
	}
}

// MapDiff converts the element values carried by d.
func MapDiff[T, U any](d VecDiff[T], f func(T) U) VecDiff[U] {
	out := VecDiff[U]{Kind: d.Kind, Index: d.Index, To: d.To}
	switch d.Kind {
	case KindReplace:
		out.Values = make([]U, len(d.Values))
		for i, v := range d.Values {
			out.Values[i] = f(v)
		}
	case KindInsertAt, KindUpdateAt, KindPush:
		out.Value = f(d.Value)
	}
	return out
}

// Apply returns values with d applied. It is the reference semantics every
// consumer of a diff stream must agree with. The input slice may be
// reused. An index outside the list panics.
func Apply[T any](values []T, d VecDiff[T]) []T {
	n := len(values)
	switch d.Kind {
	case KindReplace:
		return slices.Clone(d.Values)
	case KindInsertAt:
		checkIndex("InsertAt", d.Index, n, true)
		return slices.Insert(values, d.Index, d.Value)
	case KindUpdateAt:
		checkIndex("UpdateAt", d.Index, n, false)
		values[d.Index] = d.Value
		return values
	case KindRemoveAt:
		checkIndex("RemoveAt", d.Index, n, false)
		return slices.Delete(values, d.Index, d.Index+1)
	case KindMove:
		checkIndex("Move", d.Index, n, false)
		checkIndex("Move", d.To, n, false)
		v := values[d.Index]
		values = slices.Delete(values, d.Index, d.Index+1)
		return slices.Insert(values, d.To, v)
	case KindPush:
		return append(values, d.Value)
	case KindPop:
		if n == 0 {
			errors.Panic("E120", "Pop on empty list")
		}
		return values[:n-1]
	case KindClear:
		return values[:0]
	default:
		panic(fmt.Sprintf("signalvec: unknown diff kind %d", d.Kind))
	}
}

// checkIndex panics unless 0 <= i < length, or i == length when allowEnd
// is set.
func checkIndex(op string, i, length int, allowEnd bool) {
	limit := length
	if allowEnd {
		limit++
	}
	if i < 0 || i >= limit {
		errors.Panic("E120", "%s(%d) on len %d", op, i, length)
	}
}
