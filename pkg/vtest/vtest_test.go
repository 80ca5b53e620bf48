package vtest_test

import (
	"strconv"
	"testing"

	"github.com/vango-dev/silk/pkg/dom"
	"github.com/vango-dev/silk/pkg/reactive"
	"github.com/vango-dev/silk/pkg/signalvec"
	"github.com/vango-dev/silk/pkg/vtest"
)

func TestHarnessFlush(t *testing.T) {
	h := vtest.New(t)
	count := reactive.NewSignal(0)
	p := h.RT.Element("p").Attr("class", "count").TextSignal(reactive.Map(count, strconv.Itoa))

	if ran := h.Flush(); ran == 0 {
		t.Error("first flush ran no paint callbacks")
	}
	vtest.ExpectMarkup(t, p, `<p class="count">0</p>`)

	count.Write().Set(3)
	h.Flush()
	vtest.ExpectMarkup(t, p, `<p class="count">3</p>`)

	if ran := h.Flush(); ran != 0 {
		t.Errorf("idle flush ran %d callbacks", ran)
	}
}

func TestRenderAssertions(t *testing.T) {
	h := vtest.New(t)
	items := signalvec.NewMutableVec[dom.Child](
		h.RT.Element("li").Attr("data-id", "a").Text("first"),
	)
	ul := h.RT.Element("ul").Children(items)
	h.Flush()

	vtest.ExpectContains(t, ul, "first")
	vtest.ExpectNotContains(t, ul, "second")
	vtest.ExpectElement(t, ul, "li")
	vtest.ExpectAttribute(t, ul, "data-id", "a")

	items.Push(h.RT.Element("li").Text("second"))
	h.Flush()
	vtest.ExpectMarkup(t, ul, `<ul><li data-id="a">first</li><li>second</li></ul>`)
}

func TestRenderToString(t *testing.T) {
	if got := vtest.RenderToString(nil); got != "" {
		t.Errorf("RenderToString(nil) = %q", got)
	}
	h := vtest.New(t)
	if got := vtest.RenderToString(h.RT.Text("hi")); got != "hi" {
		t.Errorf("RenderToString(text) = %q", got)
	}
}

func TestExpectViolation(t *testing.T) {
	items := signalvec.NewMutableVec[int]()
	vtest.ExpectViolation(t, "E120", func() { items.At(0) })

	sig := reactive.NewSignal(1)
	sig.Release()
	vtest.ExpectViolation(t, "E102", func() { sig.Current() })
}
