package reactive

import "testing"

func TestScopeCleanupOrder(t *testing.T) {
	root := NewScope(nil)
	child := NewScope(root)

	var order []string
	root.OnCleanup(func() { order = append(order, "root-1") })
	root.OnCleanup(func() { order = append(order, "root-2") })
	child.OnCleanup(func() { order = append(order, "child") })

	root.Dispose()

	want := []string{"child", "root-2", "root-1"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if !child.IsDisposed() {
		t.Error("child should be disposed with its parent")
	}
}

func TestScopeDisposeTwice(t *testing.T) {
	s := NewScope(nil)
	calls := 0
	s.OnCleanup(func() { calls++ })
	s.Dispose()
	s.Dispose()
	if calls != 1 {
		t.Errorf("expected 1 cleanup, got %d", calls)
	}
}

func TestScopeChildDisposedAlone(t *testing.T) {
	root := NewScope(nil)
	child := NewScope(root)
	calls := 0
	child.OnCleanup(func() { calls++ })

	child.Dispose()
	if len(root.children) != 0 {
		t.Errorf("disposed child should be detached, %d children remain", len(root.children))
	}
	root.Dispose()
	if calls != 1 {
		t.Errorf("expected 1 cleanup, got %d", calls)
	}
}

func TestScopeKeepReleasesHandles(t *testing.T) {
	s := NewScope(nil)
	x := NewSignal(0)
	w := x.Write()
	seen := &counter[int]{}
	s.Keep(Observe(x, seen.observe))
	s.Keep(x)

	w.Set(1)
	s.Dispose()
	w.Set(2)

	if seen.calls != 2 {
		t.Errorf("expected 2 observations, got %d", seen.calls)
	}
	if w.Alive() {
		t.Error("kept signal should be torn down")
	}
}

func TestScopeOnDisposedScope(t *testing.T) {
	s := NewScope(nil)
	s.Dispose()

	ran := false
	s.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup on disposed scope should run immediately")
	}

	expectViolation(t, "E103", func() { NewScope(s) })
}
