package hooks

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vk/perfgrid/internal/node"
)

// Event is a single hook call captured by Recorder.
type Event struct {
	Kind string
	Node string
	Err  error
}

// Event kinds.
const (
	EventBeforePipeline = "before_pipeline_run"
	EventAfterPipeline  = "after_pipeline_run"
	EventBeforeNode     = "before_node_run"
	EventAfterNode      = "after_node_run"
	EventNodeError      = "on_node_error"
)

// Recorder captures hook calls in the order they happen.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of every captured event.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Executed returns the names of nodes that completed successfully, in
// completion order.
func (r *Recorder) Executed() []string {
	return r.nodes(EventAfterNode)
}

// Started returns the names of nodes whose execution began.
func (r *Recorder) Started() []string {
	return r.nodes(EventBeforeNode)
}

// Failed returns the names of nodes that reported an error.
func (r *Recorder) Failed() []string {
	return r.nodes(EventNodeError)
}

func (r *Recorder) nodes(kind string) []string {
	var out []string
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e.Node)
		}
	}
	return out
}

func (r *Recorder) BeforePipelineRun(ctx context.Context, _ RunInfo) context.Context {
	r.add(Event{Kind: EventBeforePipeline})
	return ctx
}

func (r *Recorder) AfterPipelineRun(_ context.Context, _ RunInfo, err error) {
	r.add(Event{Kind: EventAfterPipeline, Err: err})
}

func (r *Recorder) BeforeNodeRun(ctx context.Context, n *node.Node, _ map[string]any) context.Context {
	r.add(Event{Kind: EventBeforeNode, Node: n.Name()})
	return ctx
}

func (r *Recorder) AfterNodeRun(_ context.Context, n *node.Node, _ map[string]any, _ time.Duration) {
	r.add(Event{Kind: EventAfterNode, Node: n.Name()})
}

func (r *Recorder) OnNodeError(_ context.Context, n *node.Node, err error, _ time.Duration) {
	r.add(Event{Kind: EventNodeError, Node: n.Name(), Err: err})
}

var _ Hook = (*Recorder)(nil)
