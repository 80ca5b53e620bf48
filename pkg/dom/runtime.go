package dom

import (
	"github.com/vango-dev/silk/pkg/render"
	"github.com/vango-dev/silk/pkg/tree"
)

// Runtime ties a tree backend to the scheduler that applies mutations to
// it. A Runtime belongs to one goroutine.
type Runtime struct {
	backend   tree.Backend
	scheduler *render.Scheduler
}

// NewRuntime creates a runtime.
func NewRuntime(backend tree.Backend, scheduler *render.Scheduler) *Runtime {
	return &Runtime{backend: backend, scheduler: scheduler}
}

// Backend returns the tree backend mutations are applied to.
func (rt *Runtime) Backend() tree.Backend { return rt.backend }

// Scheduler returns the scheduler that queues and flushes mutations.
func (rt *Runtime) Scheduler() *render.Scheduler { return rt.scheduler }

// queue schedules fn as a mutation of node.
func (rt *Runtime) queue(node tree.Node, fn func()) {
	rt.scheduler.QueueNodeUpdate(node, fn)
}
