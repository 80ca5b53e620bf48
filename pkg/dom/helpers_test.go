package dom

import (
	"testing"

	"github.com/vango-dev/silk/internal/errors"
	"github.com/vango-dev/silk/pkg/render"
	"github.com/vango-dev/silk/pkg/tree"
	"github.com/vango-dev/silk/pkg/tree/dry"
)

// mutation is one structural call seen by recorder. child is the node
// being attached or detached, nil for ClearChildren.
type mutation struct {
	op     string
	parent tree.Node
	child  tree.Node
}

// recorder is a dry document that logs structural mutations.
type recorder struct {
	*dry.Document
	log []mutation
}

func (r *recorder) record(op string, parent, child tree.Node) {
	r.log = append(r.log, mutation{op: op, parent: parent, child: child})
}

func (r *recorder) AppendChild(parent, child tree.Node) {
	r.record("append", parent, child)
	r.Document.AppendChild(parent, child)
}

func (r *recorder) InsertChildBefore(parent, child, next tree.Node) {
	r.record("insert", parent, child)
	r.Document.InsertChildBefore(parent, child, next)
}

func (r *recorder) ReplaceChild(parent, newChild, oldChild tree.Node) {
	r.record("replace-new", parent, newChild)
	r.record("replace-old", parent, oldChild)
	r.Document.ReplaceChild(parent, newChild, oldChild)
}

func (r *recorder) RemoveChild(parent, child tree.Node) {
	r.record("remove", parent, child)
	r.Document.RemoveChild(parent, child)
}

func (r *recorder) ClearChildren(parent tree.Node) {
	r.record("clear", parent, nil)
	r.Document.ClearChildren(parent)
}

// ops returns and resets the log.
func (r *recorder) ops() []mutation {
	log := r.log
	r.log = nil
	return log
}

type fixture struct {
	doc *recorder
	rt  *Runtime
}

func newFixture() *fixture {
	doc := &recorder{Document: dry.New()}
	return &fixture{
		doc: doc,
		rt:  NewRuntime(doc, render.New(doc)),
	}
}

// flush paints until no work is left.
func (f *fixture) flush() {
	for f.doc.PendingPaints() > 0 {
		f.doc.Paint()
	}
}

// text creates a text child.
func (f *fixture) text(s string) Child {
	return f.rt.Text(s)
}

func markup(n tree.Node) string {
	return n.(*dry.Node).String()
}

func expectViolation(t *testing.T, code string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		if got := errors.Code(recover()); got != code {
			t.Fatalf("expected violation %s, got %q", code, got)
		}
	}()
	fn()
}

// releaseCounter is a Child that counts releases.
type releaseCounter struct {
	node     tree.Node
	releases int
}

func (c *releaseCounter) Node() tree.Node { return c.node }
func (c *releaseCounter) Release()        { c.releases++ }
