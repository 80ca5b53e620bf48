package reactive

import (
	"reflect"

	"github.com/vango-dev/silk/internal/errors"
)

// typePair identifies one homogeneous key/value map inside a generation.
type typePair struct {
	key   reflect.Type
	value reflect.Type
}

// generation maps a type pair to a map[K]V.
type generation map[typePair]any

type memoData struct {
	current generation
	next    generation
}

// MemoCache holds memoized values across frames. A cache typically lives
// as long as a component, while a MemoFrame lasts for one render.
type MemoCache struct {
	data *memoData
}

// NewMemoCache creates an empty cache.
func NewMemoCache() *MemoCache {
	return &MemoCache{
		data: &memoData{
			current: generation{},
			next:    generation{},
		},
	}
}

// Frame starts a new frame. Values are only kept until the next frame: a
// value requested before the frame ends is carried over, everything else is
// dropped from the cache.
func (c *MemoCache) Frame() *MemoFrame {
	return &MemoFrame{data: c.data}
}

// Len returns the number of values available to the next frame.
func (c *MemoCache) Len() int {
	n := 0
	for _, m := range c.data.current {
		n += reflect.ValueOf(m).Len()
	}
	return n
}

// MemoFrame is the scope of one frame for a MemoCache.
type MemoFrame struct {
	data  *memoData
	ended bool
}

// Cache looks up key in the frame's cache. If the previous frame cached a
// value for key it is returned and compute is not called. Otherwise compute
// runs. Either way the value is cached for the next frame.
//
// Keys are scoped by the key and value types, so Cache[uint8, int] and
// Cache[uint64, int] never collide. A key must include every functional
// dependency of compute. Requesting the same key twice within one frame
// panics.
func Cache[K comparable, V any](f *MemoFrame, key K, compute func() V) V {
	if f.ended {
		errors.Panic("E111", "Cache(%v) after End", key)
	}

	pair := typePair{key: reflect.TypeFor[K](), value: reflect.TypeFor[V]()}

	next := memoMap[K, V](f.data.next, pair)
	if _, dup := next[key]; dup {
		errors.Panic("E110", "key %v (%s -> %s)", key, pair.key, pair.value)
	}

	current := memoMap[K, V](f.data.current, pair)
	value, ok := current[key]
	if ok {
		delete(current, key)
	} else {
		value = compute()
	}

	next[key] = value
	return value
}

// End closes the frame: values requested during it become the cache for
// the next frame and all others are dropped. Ending twice is a no-op.
func (f *MemoFrame) End() {
	if f.ended {
		return
	}
	f.ended = true
	f.data.current = f.data.next
	f.data.next = generation{}
}

// Ended reports whether End has run.
func (f *MemoFrame) Ended() bool {
	return f.ended
}

func memoMap[K comparable, V any](g generation, pair typePair) map[K]V {
	if m, ok := g[pair]; ok {
		return m.(map[K]V)
	}
	m := make(map[K]V)
	g[pair] = m
	return m
}
