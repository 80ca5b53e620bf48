package reactive

import (
	"testing"

	"github.com/vango-dev/silk/internal/errors"
)

// expectViolation runs fn and fails unless it panics with a violation of
// the given code.
func expectViolation(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected violation %s, got no panic", code)
		}
		if got := errors.Code(r); got != code {
			t.Fatalf("expected violation %s, got %v", code, r)
		}
	}()
	fn()
}

// counter counts calls and remembers the last value it saw.
type counter[T any] struct {
	calls int
	last  T
}

func (c *counter[T]) observe(v T) {
	c.calls++
	c.last = v
}
