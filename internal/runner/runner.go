// Package runner executes pipelines against a dataset store.
//
// Every runner validates the pipeline before touching the store: cycles are
// rejected with a *pipeline.CyclicPipelineError and unseeded free inputs
// with a *catalog.MissingDatasetError. Execution then follows a
// deterministic topological order (ties broken by declaration order) and
// stops at the first failing node with a *PipelineExecutionError.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/dag"
	"github.com/vk/perfgrid/internal/hooks"
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
)

// Runner runs a pipeline against a seeded store and returns the store. The
// store is returned on failure too, holding whatever completed before the
// failing node.
type Runner interface {
	Run(ctx context.Context, p *pipeline.Pipeline, store *catalog.Store) (*catalog.Store, error)
}

// Names accepted by New.
const (
	KindSequential = "sequential"
	KindParallel   = "parallel"
)

// Option configures a runner.
type Option func(*options)

type options struct {
	hooks []hooks.Hook
}

// WithHooks registers lifecycle hooks, called in the given order.
func WithHooks(h ...hooks.Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, h...)
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New creates a runner by kind name.
func New(kind string, workers int, opts ...Option) (Runner, error) {
	switch kind {
	case "", KindSequential:
		return NewSequential(opts...), nil
	case KindParallel:
		return NewParallel(workers, opts...), nil
	default:
		return nil, fmt.Errorf("unknown runner %q (expected %q or %q)", kind, KindSequential, KindParallel)
	}
}

// Plan returns the nodes of p in execution order without running anything.
func Plan(p *pipeline.Pipeline) ([]*node.Node, error) {
	g := p.DependencyGraph()

	var cycle *dag.CycleError
	if err := g.DetectCycles(); errors.As(err, &cycle) {
		return nil, &pipeline.CyclicPipelineError{Nodes: cycle.Nodes}
	}

	ids, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	order := make([]*node.Node, len(ids))
	for i, id := range ids {
		n, _ := p.Node(id)
		order[i] = n
	}
	return order, nil
}

// prepare validates p against the store and returns the execution order.
func prepare(p *pipeline.Pipeline, store *catalog.Store) ([]*node.Node, error) {
	order, err := Plan(p)
	if err != nil {
		return nil, err
	}
	if err := checkInputs(order, p, store); err != nil {
		return nil, err
	}
	return order, nil
}

// checkInputs reports the first free input, by execution order, that the
// store lacks.
func checkInputs(order []*node.Node, p *pipeline.Pipeline, store *catalog.Store) error {
	for _, n := range order {
		for _, in := range n.Inputs() {
			if _, produced := p.Producer(in); produced {
				continue
			}
			if !store.Has(in) {
				return &catalog.MissingDatasetError{Name: in, Node: n.Name()}
			}
		}
	}
	return nil
}

func runInfo(ctx context.Context, kind string, p *pipeline.Pipeline, order []*node.Node) hooks.RunInfo {
	names := make([]string, len(order))
	for i, n := range order {
		names[i] = n.Name()
	}
	return hooks.RunInfo{
		RunID:  hooks.RunID(ctx),
		Runner: kind,
		Nodes:  names,
		Inputs: p.Inputs(),
	}
}

// execute runs one node with hooks and returns its error unwrapped. Node
// hooks only fire once the inputs are loaded.
func execute(ctx context.Context, hm *hooks.Manager, n *node.Node, store *catalog.Store) error {
	inputs, err := n.Load(store)
	if err != nil {
		return err
	}

	start := time.Now()
	nodeCtx := hm.BeforeNodeRun(ctx, n, inputs)

	outputs, err := n.Call(nodeCtx, inputs)
	if err == nil {
		err = n.Save(store, outputs)
	}
	if err != nil {
		hm.OnNodeError(nodeCtx, n, err, time.Since(start))
		return err
	}

	hm.AfterNodeRun(nodeCtx, n, outputs, time.Since(start))
	return nil
}
