// Package demo is a small counter list built from every silk primitive.
// silk serve streams it to remote clients, and its tests render it on a
// dry document.
//
// There are no event callbacks: the App is driven by calling its methods,
// typically from a session task on a timer.
package demo

import (
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/silk/pkg/dom"
	"github.com/vango-dev/silk/pkg/reactive"
	"github.com/vango-dev/silk/pkg/signalvec"
	"github.com/vango-dev/silk/pkg/tree"
)

// MaxCounters bounds the list when driven by Tick.
const MaxCounters = 8

type counter struct {
	id    int
	value *reactive.Signal[int]
	label *reactive.Signal[string]
	el    *dom.Element
}

// labelKey is the memo key of a counter label.
type labelKey struct {
	id, value int
}

// App is the demo tree. It belongs to the goroutine that owns its runtime.
type App struct {
	rt     *dom.Runtime
	logger *slog.Logger
	memo   *reactive.MemoCache
	// frame is the latest memo frame. It ends after the flush that
	// applies its labels.
	frame *reactive.MemoFrame

	root     *dom.Element
	title    *reactive.Signal[string]
	count    *reactive.Signal[int]
	total    *reactive.SumTotal[int]
	items    *signalvec.MutableVec[dom.Child]
	counters []*counter
	nextID   int
}

// New builds the demo under rt. The root element is created detached;
// Root returns it for mounting.
func New(rt *dom.Runtime, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		rt:     rt,
		logger: logger,
		memo:   reactive.NewMemoCache(),
		title:  reactive.NewSignal("Counters"),
		count:  reactive.NewSignal(0),
		total:  reactive.NewSumTotal[int](),
		items:  signalvec.NewMutableVec[dom.Child](),
	}

	zipped := reactive.Zip2(a.count, a.total, func(n, total int) string {
		return fmt.Sprintf("%d counters, total %d", n, total)
	})
	summary := reactive.OnlyChanges(zipped)
	odd := reactive.Map(a.total, func(total int) bool { return total%2 != 0 })
	isEmpty := reactive.Map(a.count, func(n int) bool { return n == 0 })
	empty := reactive.OnlyChanges(isEmpty)
	notice := reactive.Map(empty, func(empty bool) dom.Child {
		if !empty {
			return nil
		}
		return rt.Element("p").Attr("class", "empty").Text("No counters yet")
	})

	a.root = rt.Element("main").
		Child(rt.Element("h1").TextSignal(a.title)).
		Child(rt.Element("p").
			Attr("class", "summary").
			BoolAttrSignal("data-odd", odd).
			TextSignal(summary)).
		Child(rt.Element("ul").Children(a.items)).
		OptionalChild(notice)

	dom.EffectSignal(a.root, summary, func(node tree.Node, text string) {
		a.logger.Debug("summary painted", "node", node.ID(), "text", text)
	})

	scope := a.root.Scope()
	for _, r := range []reactive.Releaser{a.title, a.count, a.total, zipped, summary, odd, isEmpty, empty, notice} {
		scope.Keep(r)
	}
	return a
}

// Root returns the root element.
func (a *App) Root() *dom.Element { return a.root }

// Len returns the number of counters.
func (a *App) Len() int { return len(a.counters) }

// Total returns the sum of all counters.
func (a *App) Total() int { return a.total.Current() }

// Values returns the counter values in display order.
func (a *App) Values() []int {
	values := make([]int, len(a.counters))
	for i, c := range a.counters {
		values[i] = c.value.Current()
	}
	return values
}

// SetTitle changes the heading.
func (a *App) SetTitle(title string) {
	a.title.Write().Set(title)
}

// Add appends a counter starting at value.
func (a *App) Add(value int) {
	a.nextID++
	c := &counter{
		id:    a.nextID,
		value: reactive.NewSignal(value),
		label: reactive.NewSignal(""),
	}
	sum := reactive.NewSumElement(a.total)
	text := reactive.OnlyChanges(c.label)
	data := reactive.Map(c.value, strconv.Itoa)

	c.el = a.rt.Element("li").
		AttrSignal("data-value", data).
		TextSignal(text)
	scope := c.el.Scope()
	for _, r := range []reactive.Releaser{c.value, c.label, sum, sum.Track(c.value), text, data} {
		scope.Keep(r)
	}

	a.counters = append(a.counters, c)
	a.items.Push(c.el)
	a.count.Write().Set(len(a.counters))
}

// Remove deletes the counter at index i. Its contribution leaves the total.
func (a *App) Remove(i int) {
	a.items.RemoveAt(i)
	a.counters = slices.Delete(a.counters, i, i+1)
	a.count.Write().Set(len(a.counters))
}

// Increment adds by to the counter at index i.
func (a *App) Increment(i, by int) {
	a.counters[i].value.Write().Replace(func(v int) int { return v + by })
}

// Move moves the counter at from to index to.
func (a *App) Move(from, to int) {
	c := a.counters[from]
	a.counters = slices.Insert(slices.Delete(a.counters, from, from+1), to, c)
	a.items.Move(from, to)
}

// Reset removes every counter.
func (a *App) Reset() {
	a.items.Clear()
	a.counters = nil
	a.count.Write().Set(0)
}

// Render refreshes the counter labels. Labels come from a memo cache, so a
// counter whose value did not change since the previous Render reuses its
// label. The frame ends once the next flush has applied the labels; a
// Render before that flush ends the pending frame first.
func (a *App) Render() {
	if a.frame != nil {
		a.frame.End()
	}
	frame := a.rt.Scheduler().MemoFrame(a.memo)
	a.frame = frame
	for _, c := range a.counters {
		v := c.value.Current()
		c.label.Write().Set(reactive.Cache(frame, labelKey{c.id, v}, func() string {
			return label(v)
		}))
	}
}

func label(v int) string {
	bar := strings.Repeat("#", min(max(v, 0), 20))
	return fmt.Sprintf("%4d %s", v, bar)
}

// Tick applies one random change and renders.
func (a *App) Tick(rng *rand.Rand) {
	n := len(a.counters)
	switch op := rng.Intn(10); {
	case n == 0 || (op == 0 && n < MaxCounters):
		a.Add(rng.Intn(5))
	case op == 1 && n > 1:
		a.Remove(rng.Intn(n))
	case op == 2 && n > 1:
		a.Move(rng.Intn(n), rng.Intn(n))
	case op == 3 && n == MaxCounters:
		a.Reset()
	default:
		a.Increment(rng.Intn(n), rng.Intn(3)-1)
	}
	a.Render()
}

// Release stops every binding of the demo.
func (a *App) Release() {
	a.root.Release()
}
