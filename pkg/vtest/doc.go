// Package vtest provides testing helpers for silk trees.
//
// A Harness pairs a runtime with a dry document, so bindings can be
// painted and asserted on without a real renderer.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.New(t)
//	    count := reactive.NewSignal(0)
//	    p := h.RT.Element("p").TextSignal(reactive.Map(count, strconv.Itoa))
//	    h.Flush()
//	    vtest.ExpectMarkup(t, p, "<p>0</p>")
//
//	    count.Write().Set(3)
//	    h.Flush()
//	    vtest.ExpectMarkup(t, p, "<p>3</p>")
//	}
//
// # Render Assertions
//
// Assert on rendered markup:
//
//	vtest.ExpectContains(t, root, "Welcome")
//	vtest.ExpectNotContains(t, root, "Error")
//	vtest.ExpectAttribute(t, root, "class", "active")
//
// # Violations
//
// Programming errors surface as panics carrying a registered code:
//
//	vtest.ExpectViolation(t, "E120", func() { items.RemoveAt(9) })
package vtest
