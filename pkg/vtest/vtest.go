package vtest

import (
	"strings"
	"testing"

	"github.com/vango-dev/silk/internal/errors"
	"github.com/vango-dev/silk/pkg/dom"
	"github.com/vango-dev/silk/pkg/render"
	"github.com/vango-dev/silk/pkg/tree"
	"github.com/vango-dev/silk/pkg/tree/dry"
)

// Harness is a runtime over a dry document.
type Harness struct {
	t   testing.TB
	Doc *dry.Document
	RT  *dom.Runtime
}

// New creates a harness. Scheduler options are passed to render.New.
//
// Example:
//
//	h := vtest.New(t)
//	count := reactive.NewSignal(1)
//	p := h.RT.Element("p").TextSignal(reactive.Map(count, strconv.Itoa))
//	h.Flush()
//	vtest.ExpectMarkup(t, p, "<p>1</p>")
func New(t testing.TB, opts ...render.Option) *Harness {
	doc := dry.New()
	return &Harness{
		t:   t,
		Doc: doc,
		RT:  dom.NewRuntime(doc, render.New(doc, opts...)),
	}
}

// Flush paints until no paint callback is pending and returns how many
// ran. It fails the test if painting does not settle.
func (h *Harness) Flush() int {
	h.t.Helper()
	ran := 0
	for i := 0; h.Doc.PendingPaints() > 0; i++ {
		if i == 100 {
			h.t.Fatalf("paint did not settle after %d rounds", i)
		}
		ran += h.Doc.Paint()
	}
	return ran
}

// RenderToString returns the markup of c, or "" if c is not on a dry
// document.
//
// Example:
//
//	html := vtest.RenderToString(app.Root())
func RenderToString(c dom.Child) string {
	if c == nil {
		return ""
	}
	return Markup(c.Node())
}

// Markup returns the markup of a dry node, or "" for any other node.
func Markup(n tree.Node) string {
	if d, ok := n.(*dry.Node); ok {
		return d.String()
	}
	return ""
}

// ExpectMarkup asserts that c renders exactly as want.
func ExpectMarkup(t testing.TB, c dom.Child, want string) {
	t.Helper()
	if got := RenderToString(c); got != want {
		t.Errorf("rendered markup mismatch\n got: %s\nwant: %s", got, want)
	}
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, app.Root(), "No counters yet")
func ExpectContains(t testing.TB, c dom.Child, expected string) {
	t.Helper()
	html := RenderToString(c)
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(t testing.TB, c dom.Child, unexpected string) {
	t.Helper()
	html := RenderToString(c)
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(t testing.TB, c dom.Child, tag string) {
	t.Helper()
	html := RenderToString(c)
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	vtest.ExpectAttribute(t, li, "data-value", "3")
func ExpectAttribute(t testing.TB, c dom.Child, attr, value string) {
	t.Helper()
	html := RenderToString(c)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// ExpectViolation asserts that fn panics with the violation code.
//
// Example:
//
//	vtest.ExpectViolation(t, "E102", func() { released.Current() })
func ExpectViolation(t testing.TB, code string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if got := errors.Code(r); got != code {
			t.Errorf("expected violation %s, got %q (recovered %v)", code, got, r)
		}
	}()
	fn()
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
