package demo

import (
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/vango-dev/silk/pkg/tree/dry"
	"github.com/vango-dev/silk/pkg/vtest"
)

func newApp(t *testing.T) (*App, *vtest.Harness) {
	t.Helper()
	h := vtest.New(t)
	return New(h.RT, slog.New(slog.NewTextHandler(io.Discard, nil))), h
}

func markup(a *App) string {
	return vtest.RenderToString(a.Root())
}

func TestAppRendersEmptyState(t *testing.T) {
	a, h := newApp(t)
	h.Flush()

	vtest.ExpectMarkup(t, a.Root(), `<main><h1>Counters</h1><p class="summary">0 counters, total 0</p><ul/><p class="empty">No counters yet</p></main>`)
}

func TestAppCounters(t *testing.T) {
	a, h := newApp(t)
	a.Add(1)
	a.Add(2)
	a.Render()
	h.Flush()

	got := markup(a)
	for _, want := range []string{
		`<p class="summary" data-odd="">2 counters, total 3</p>`,
		`<li data-value="1">   1 #</li>`,
		`<li data-value="2">   2 ##</li>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %s in %s", want, got)
		}
	}
	vtest.ExpectNotContains(t, a.Root(), "No counters")

	a.Increment(0, 3)
	a.Move(0, 1)
	a.SetTitle("Tally")
	a.Render()
	h.Flush()
	got = markup(a)
	if !strings.Contains(got, `<h1>Tally</h1>`) || !strings.Contains(got, `<ul><li data-value="2">   2 ##</li><li data-value="4">   4 ####</li></ul>`) {
		t.Errorf("after move: %s", got)
	}
	if a.Total() != 6 || strings.Contains(got, "data-odd") {
		t.Errorf("total %d, markup %s", a.Total(), got)
	}

	a.Remove(0)
	if a.Total() != 4 || a.Len() != 1 {
		t.Errorf("after remove: total %d, len %d", a.Total(), a.Len())
	}

	a.Reset()
	h.Flush()
	if a.Total() != 0 || !strings.Contains(markup(a), "No counters yet") {
		t.Errorf("after reset: total %d, markup %s", a.Total(), markup(a))
	}
}

func TestRenderReusesLabels(t *testing.T) {
	a, h := newApp(t)
	a.Add(1)
	a.Render()
	h.Flush()
	before := a.memo.Len()

	a.Render()
	a.Render()
	h.Flush()
	if a.memo.Len() != before {
		t.Errorf("memo len %d, want %d", a.memo.Len(), before)
	}
	vtest.ExpectContains(t, a.Root(), label(1))
}

func TestRenderEndsFrameAfterFlush(t *testing.T) {
	a, h := newApp(t)
	a.Add(1)
	a.Add(2)
	a.Render()
	if a.memo.Len() != 0 {
		t.Fatalf("frame ended before the flush: memo len %d", a.memo.Len())
	}
	if a.frame.Ended() {
		t.Fatal("frame ended before the flush")
	}

	h.Flush()
	if !a.frame.Ended() {
		t.Fatal("frame still open after the flush")
	}
	if a.memo.Len() != 2 {
		t.Errorf("memo len %d, want 2", a.memo.Len())
	}
}

func TestTickKeepsTotalConsistent(t *testing.T) {
	a, h := newApp(t)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		a.Tick(rng)
		if i%7 == 0 {
			h.Flush()
		}
		sum := 0
		for _, v := range a.Values() {
			sum += v
		}
		if a.Total() != sum {
			t.Fatalf("tick %d: total %d, sum of values %d", i, a.Total(), sum)
		}
		if a.Len() > MaxCounters {
			t.Fatalf("tick %d: %d counters", i, a.Len())
		}
	}
	h.Flush()

	items := a.Root().Node().(*dry.Node).Children()[2].Children()
	if len(items) != a.Len() {
		t.Errorf("%d list items for %d counters", len(items), a.Len())
	}
}

func TestReleaseStopsApp(t *testing.T) {
	a, h := newApp(t)
	a.Add(1)
	h.Flush()
	a.Release()

	a.SetTitle("ignored")
	if a.rt.Scheduler().Pending() {
		t.Error("released app should not queue mutations")
	}
}
