package dom

import (
	"testing"

	"github.com/vango-dev/silk/pkg/reactive"
	"github.com/vango-dev/silk/pkg/signalvec"
	"github.com/vango-dev/silk/pkg/tree"
)

func TestChildVecOperations(t *testing.T) {
	f := newFixture()
	items := signalvec.NewMutableVec[Child]()
	ul := f.rt.Element("ul").Children(items)

	steps := []struct {
		name string
		do   func()
		want string
	}{
		{"push", func() { items.Push(f.text("a")); items.Push(f.text("c")) }, "<ul>ac</ul>"},
		{"insert middle", func() { items.InsertAt(1, f.text("b")) }, "<ul>abc</ul>"},
		{"insert front", func() { items.InsertAt(0, f.text("0")) }, "<ul>0abc</ul>"},
		{"insert end", func() { items.InsertAt(4, f.text("d")) }, "<ul>0abcd</ul>"},
		{"update first", func() { items.SetAt(0, f.text("1")) }, "<ul>1abcd</ul>"},
		{"remove first", func() { items.RemoveAt(0) }, "<ul>abcd</ul>"},
		{"move forward", func() { items.Move(0, 3) }, "<ul>bcda</ul>"},
		{"move to front", func() { items.Move(2, 0) }, "<ul>dbca</ul>"},
		{"pop", func() { items.Pop() }, "<ul>dbc</ul>"},
		{"replace", func() { items.Replace([]Child{f.text("x"), f.text("y")}) }, "<ul>xy</ul>"},
		{"clear", func() { items.Clear() }, "<ul/>"},
		{"push after clear", func() { items.Push(f.text("z")) }, "<ul>z</ul>"},
		{"replace empty", func() { items.Replace(nil) }, "<ul/>"},
	}

	for _, s := range steps {
		s.do()
		f.flush()
		if got := markup(ul.Node()); got != s.want {
			t.Fatalf("%s: expected %s, got %s", s.name, s.want, got)
		}
	}
}

func TestChildVecBatchedDiffs(t *testing.T) {
	f := newFixture()
	items := signalvec.NewMutableVec[Child]()
	ul := f.rt.Element("ul").Text("<").Children(items).Text(">")

	items.Push(f.text("a"))
	items.Push(f.text("b"))
	items.InsertAt(0, f.text("c"))
	items.Move(2, 0)
	items.RemoveAt(1)
	items.Push(f.text("d"))
	f.flush()

	if got := markup(ul.Node()); got != "<ul><bad></ul>" {
		t.Errorf("got %s", got)
	}
}

func TestChildGroupAnchors(t *testing.T) {
	f := newFixture()
	left := signalvec.NewMutableVec[Child]()
	right := signalvec.NewMutableVec[Child]()
	div := f.rt.Element("div").
		Text("<").
		Children(left).
		Text("|").
		Children(right).
		Text(">")

	if got := markup(div.Node()); got != "<div><</div>" {
		t.Fatalf("only statics before the first region are appended before a flush, got %s", got)
	}
	f.flush()
	if got := markup(div.Node()); got != "<div><|></div>" {
		t.Fatalf("got %s", got)
	}

	steps := []struct {
		do   func()
		want string
	}{
		{func() { right.Push(f.text("x")) }, "<|x>"},
		{func() { left.Push(f.text("a")) }, "<a|x>"},
		{func() { left.Push(f.text("b")) }, "<ab|x>"},
		{func() { right.InsertAt(0, f.text("w")) }, "<ab|wx>"},
		{func() { left.Clear() }, "<|wx>"},
		{func() { right.RemoveAt(0) }, "<|x>"},
		{func() { left.Replace([]Child{f.text("p"), f.text("q")}) }, "<pq|x>"},
	}
	for i, s := range steps {
		s.do()
		f.flush()
		if got := markup(div.Node()); got != "<div>"+s.want+"</div>" {
			t.Fatalf("step %d: expected %s, got %s", i, s.want, got)
		}
	}
}

func TestStaticAfterPopulatedRegion(t *testing.T) {
	f := newFixture()
	items := signalvec.NewMutableVec[Child](f.text("a"), f.text("b"))
	slot := reactive.NewSignal[Child](f.text("x"))
	div := f.rt.Element("div").
		Children(items).
		Text("|").
		OptionalChild(slot).
		Text("static").
		Text("!")
	f.flush()
	if got := markup(div.Node()); got != "<div>ab|xstatic!</div>" {
		t.Fatalf("got %s", got)
	}

	items.Push(f.text("c"))
	slot.Write().Set(f.text("y"))
	f.flush()
	if got := markup(div.Node()); got != "<div>abc|ystatic!</div>" {
		t.Errorf("got %s", got)
	}
}

func TestStaticAfterPendingInserts(t *testing.T) {
	f := newFixture()
	items := signalvec.NewMutableVec[Child]()
	div := f.rt.Element("div").Children(items)
	items.Push(f.text("a"))
	div.Text("static")
	items.Push(f.text("b"))
	f.flush()
	if got := markup(div.Node()); got != "<div>abstatic</div>" {
		t.Errorf("got %s", got)
	}
}

func TestAdjacentGroups(t *testing.T) {
	f := newFixture()
	a := signalvec.NewMutableVec[Child]()
	b := signalvec.NewMutableVec[Child]()
	div := f.rt.Element("div").Children(a).Children(b)

	b.Push(f.text("3"))
	a.Push(f.text("1"))
	b.Push(f.text("4"))
	a.Push(f.text("2"))
	f.flush()
	if got := markup(div.Node()); got != "<div>1234</div>" {
		t.Fatalf("got %s", got)
	}

	b.Clear()
	a.Push(f.text("5"))
	f.flush()
	if got := markup(div.Node()); got != "<div>125</div>" {
		t.Errorf("got %s", got)
	}
}

func TestClearSingleGroupClearsParent(t *testing.T) {
	f := newFixture()
	items := signalvec.NewMutableVec[Child](f.text("a"), f.text("b"))
	ul := f.rt.Element("ul").Children(items)
	f.flush()
	f.doc.ops()

	items.Clear()
	f.flush()

	ops := f.doc.ops()
	if len(ops) != 1 || ops[0].op != "clear" || ops[0].parent != ul.Node() {
		t.Errorf("expected one ClearChildren, got %v", ops)
	}
}

func TestClearSharedParentRemovesOwnNodes(t *testing.T) {
	f := newFixture()
	items := signalvec.NewMutableVec[Child](f.text("a"), f.text("b"))
	ul := f.rt.Element("ul").Text("head").Children(items)
	f.flush()
	f.doc.ops()

	items.Clear()
	f.flush()

	for _, op := range f.doc.ops() {
		if op.op != "remove" {
			t.Errorf("unexpected %s", op.op)
		}
	}
	if got := markup(ul.Node()); got != "<ul>head</ul>" {
		t.Errorf("got %s", got)
	}
}

func TestRegionsDoNotTouchEachOther(t *testing.T) {
	f := newFixture()
	a := signalvec.NewMutableVec[Child]()
	b := signalvec.NewMutableVec[Child]()
	div := f.rt.Element("div").Children(a).Children(b)

	bNodes := map[tree.Node]bool{}
	for _, s := range []string{"x", "y", "z"} {
		c := f.text(s)
		bNodes[c.Node()] = true
		b.Push(c)
	}
	f.flush()
	f.doc.ops()

	ops := []func(){
		func() { a.Push(f.text("1")) },
		func() { a.Push(f.text("2")) },
		func() { a.InsertAt(0, f.text("0")) },
		func() { a.Move(0, 2) },
		func() { a.SetAt(1, f.text("9")) },
		func() { a.Pop() },
		func() { a.Replace([]Child{f.text("r"), f.text("s")}) },
		func() { a.RemoveAt(0) },
		func() { a.Clear() },
	}
	for i, op := range ops {
		op()
		f.flush()
		for _, m := range f.doc.ops() {
			if m.op == "clear" || bNodes[m.child] {
				t.Fatalf("op %d touched the other region: %s", i, m.op)
			}
		}
		got := markup(div.Node())
		if len(got) < len("xyz</div>") || got[len(got)-len("xyz</div>"):] != "xyz</div>" {
			t.Fatalf("op %d: other region changed: %s", i, got)
		}
	}
}

func TestChildVecReleasesRemovedChildren(t *testing.T) {
	f := newFixture()
	items := signalvec.NewMutableVec[Child]()
	f.rt.Element("ul").Children(items)

	mk := func(s string) *releaseCounter {
		return &releaseCounter{node: f.rt.Backend().CreateText(s)}
	}
	a, b, c, d, e := mk("a"), mk("b"), mk("c"), mk("d"), mk("e")
	items.Replace([]Child{a, b, c})
	items.Move(0, 2)
	f.flush()
	if a.releases+b.releases+c.releases != 0 {
		t.Fatal("moved children should not be released")
	}

	items.Replace([]Child{c, d})
	f.flush()
	if a.releases != 1 || b.releases != 1 || c.releases != 0 {
		t.Errorf("replace should release only dropped children: a=%d b=%d c=%d",
			a.releases, b.releases, c.releases)
	}

	items.SetAt(0, e)
	items.Pop()
	items.Clear()
	f.flush()
	if c.releases != 1 || d.releases != 1 || e.releases != 1 {
		t.Errorf("releases c=%d d=%d e=%d", c.releases, d.releases, e.releases)
	}
}

func TestChildVecIndexViolations(t *testing.T) {
	f := newFixture()
	el := f.rt.Element("ul")
	group := el.Groups().NewGroup()
	vec := NewChildVec(f.rt, el.Node(), el.Groups(), group)
	vec.Push(f.text("a"))

	expectViolation(t, "E120", func() { vec.InsertAt(2, f.text("b")) })
	expectViolation(t, "E120", func() { vec.SetAt(1, f.text("b")) })
	expectViolation(t, "E120", func() { vec.RemoveAt(-1) })
	expectViolation(t, "E120", func() { vec.Move(0, 1) })
	vec.Pop()
	expectViolation(t, "E120", func() { vec.Pop() })
}

func TestChildGroupViolations(t *testing.T) {
	f := newFixture()
	el := f.rt.Element("div")
	g := el.Groups()
	group := g.NewGroup()
	g.InsertOnlyChild(group, f.rt.Backend().CreateText("a"))

	expectViolation(t, "E122", func() { g.InsertOnlyChild(group, f.rt.Backend().CreateText("b")) })
	expectViolation(t, "E121", func() { g.SetFirstChild(5, nil) })
	expectViolation(t, "E121", func() { g.NextGroupElem(-1) })
}

func TestChildGroupsBookkeeping(t *testing.T) {
	f := newFixture()
	el := f.rt.Element("div")
	g := el.Groups()

	first := g.NewGroup()
	if !g.IsSingleGroup() {
		t.Error("one dynamic group should be single")
	}
	static := f.rt.Backend().CreateText("s")
	g.AppendNewGroup(static)
	second := g.NewGroup()
	g.AppendNewGroup(f.rt.Backend().CreateText("t"))
	g.AppendNewGroup(f.rt.Backend().CreateText("u"))

	if g.IsSingleGroup() {
		t.Error("five groups are not single")
	}
	// Only statics that follow a dynamic group get a slot.
	if g.Len() != 4 {
		t.Errorf("expected 4 slots, got %d", g.Len())
	}
	if g.NextGroupElem(first) != static {
		t.Error("first group should anchor on the static after it")
	}

	node := f.rt.Backend().CreateText("n")
	if g.UpsertOnlyChild(second, node) {
		t.Error("upsert into empty group should report no previous node")
	}
	if !g.UpsertOnlyChild(second, f.rt.Backend().CreateText("m")) {
		t.Error("upsert into occupied group should report the previous node")
	}
	f.flush()
	if got := markup(el.Node()); got != "<div>smtu</div>" {
		t.Errorf("got %s", got)
	}

	g.RemoveChild(second)
	g.RemoveChild(second)
	f.flush()
	if got := markup(el.Node()); got != "<div>stu</div>" {
		t.Errorf("got %s", got)
	}
}
