package replay

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/silk/pkg/dom"
	"github.com/vango-dev/silk/pkg/render"
	"github.com/vango-dev/silk/pkg/signalvec"
	"github.com/vango-dev/silk/pkg/tree"
	"github.com/vango-dev/silk/pkg/tree/dry"
)

// Divergence describes the first mismatch found by Check.
type Divergence struct {
	// Step is the index of the last step applied before the failing check.
	Step int

	// Batch holds the steps applied since the previous flush.
	Batch []Step

	Reason string
	Want   string
	Got    string
}

func (d *Divergence) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "after step %d: %s", d.Step, d.Reason)
	if d.Want != "" || d.Got != "" {
		fmt.Fprintf(&sb, "\n  want: %s\n  got:  %s", d.Want, d.Got)
	}
	for _, s := range d.Batch {
		fmt.Fprintf(&sb, "\n  %s", s)
	}
	return sb.String()
}

// recorder is a dry document that remembers every node a structural
// mutation touched.
type recorder struct {
	*dry.Document
	touched []tree.Node
}

func (r *recorder) AppendChild(parent, child tree.Node) {
	r.touched = append(r.touched, child)
	r.Document.AppendChild(parent, child)
}

func (r *recorder) InsertChildBefore(parent, child, next tree.Node) {
	r.touched = append(r.touched, child)
	r.Document.InsertChildBefore(parent, child, next)
}

func (r *recorder) ReplaceChild(parent, newChild, oldChild tree.Node) {
	r.touched = append(r.touched, newChild, oldChild)
	r.Document.ReplaceChild(parent, newChild, oldChild)
}

func (r *recorder) RemoveChild(parent, child tree.Node) {
	r.touched = append(r.touched, child)
	r.Document.RemoveChild(parent, child)
}

func (r *recorder) ClearChildren(parent tree.Node) {
	for _, c := range parent.(*dry.Node).Children() {
		r.touched = append(r.touched, c)
	}
	r.Document.ClearChildren(parent)
}

// item is a region child that counts its releases.
type item struct {
	text     *dom.Text
	region   int
	releases int
}

func (it *item) Node() tree.Node { return it.text.Node() }

func (it *item) Release() {
	it.releases++
	it.text.Release()
}

const marker = -1

// trailer is the text of the static child after the last region.
const trailer = "#end"

// harness is one parent element with a Children region per model list.
// Even regions are preceded by a static marker, so odd regions sit
// directly after another region. A static trailer follows the last
// region. Regions start with their initial contents, so the statics after
// them are added while the region's first inserts are still queued.
type harness struct {
	doc   *recorder
	rt    *dom.Runtime
	root  *dom.Element
	vecs  []*signalvec.MutableVec[int]
	model [][]int
	items map[int]*item
	owner map[uint64]int
}

func newHarness(initial [][]int) *harness {
	h := &harness{
		doc:   &recorder{Document: dry.New()},
		items: make(map[int]*item),
		owner: make(map[uint64]int),
	}
	h.rt = dom.NewRuntime(h.doc, render.New(h.doc))
	h.root = h.rt.Element("div")
	for g, values := range initial {
		if g%2 == 0 {
			h.addMarker("#" + strconv.Itoa(g))
		}
		vec := signalvec.NewMutableVec(values...)
		h.vecs = append(h.vecs, vec)
		h.model = append(h.model, slices.Clone(values))
		region := g
		h.root.Children(signalvec.Map[int, dom.Child](vec, func(id int) dom.Child {
			return h.newItem(region, id)
		}))
	}
	h.addMarker(trailer)
	h.flush()
	h.doc.touched = nil
	return h
}

func (h *harness) addMarker(text string) {
	m := h.rt.Text(text)
	h.owner[m.Node().ID()] = marker
	h.root.Child(m)
}

func (h *harness) newItem(region, id int) dom.Child {
	it := &item{text: h.rt.Text(strconv.Itoa(id)), region: region}
	h.items[id] = it
	h.owner[it.Node().ID()] = region
	return it
}

func (h *harness) flush() {
	for h.doc.PendingPaints() > 0 {
		h.doc.Paint()
	}
}

func (h *harness) apply(s Step) {
	h.model[s.Region] = naiveApply(h.model[s.Region], s.Diff)
	h.vecs[s.Region].Apply(s.Diff)
}

// expected renders the model the way actual renders the tree.
func (h *harness) expected() string {
	var parts []string
	for g, list := range h.model {
		if g%2 == 0 {
			parts = append(parts, "#"+strconv.Itoa(g))
		}
		for _, id := range list {
			parts = append(parts, strconv.Itoa(id))
		}
	}
	parts = append(parts, trailer)
	return strings.Join(parts, " ")
}

func (h *harness) actual() string {
	children := h.root.Node().(*dry.Node).Children()
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.Text()
	}
	return strings.Join(parts, " ")
}

// verify flushes and checks order, isolation and release accounting.
func (h *harness) verify(step int, batch []Step) *Divergence {
	fail := func(reason string, args ...any) *Divergence {
		return &Divergence{Step: step, Batch: batch, Reason: fmt.Sprintf(reason, args...)}
	}

	h.flush()

	dirty := make(map[int]bool)
	for _, s := range batch {
		dirty[s.Region] = true
	}
	for _, n := range h.doc.touched {
		owner, ok := h.owner[n.ID()]
		switch {
		case !ok:
			return fail("flush touched unknown node %d", n.ID())
		case owner == marker:
			return fail("flush touched marker %q", n.(*dry.Node).Text())
		case !dirty[owner]:
			return fail("flush touched node %q of untouched region %d", n.(*dry.Node).Text(), owner)
		}
	}
	h.doc.touched = nil

	if want, got := h.expected(), h.actual(); want != got {
		d := fail("physical order differs from model")
		d.Want, d.Got = want, got
		return d
	}

	live := make(map[int]bool)
	for _, list := range h.model {
		for _, id := range list {
			live[id] = true
		}
	}
	ids := make([]int, 0, len(h.items))
	for id := range h.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		it := h.items[id]
		switch {
		case live[id] && it.releases != 0:
			return fail("live item %d released %d times", id, it.releases)
		case !live[id] && it.releases != 1:
			return fail("dropped item %d released %d times", id, it.releases)
		}
	}
	return nil
}

// Check replays s, flushing after every flushEvery steps and after the
// last one. It returns a *Divergence for the first failed check, including
// the check of the initial contents, which is reported as step -1. A
// panic inside the renderer is reported as a divergence too.
func Check(s Stream, flushEvery int) (err error) {
	flushEvery = max(flushEvery, 1)
	step := -1
	var batch []Step
	defer func() {
		if r := recover(); r != nil {
			err = &Divergence{Step: step, Batch: batch, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	h := newHarness(s.Initial)
	defer h.root.Release()

	if want, got := h.expected(), h.actual(); want != got {
		return &Divergence{Step: -1, Reason: "initial order differs from model", Want: want, Got: got}
	}

	for i, st := range s.Steps {
		step = i
		batch = append(batch, st)
		h.apply(st)
		if (i+1)%flushEvery == 0 || i == len(s.Steps)-1 {
			if d := h.verify(i, batch); d != nil {
				return d
			}
			batch = nil
		}
	}
	return nil
}
