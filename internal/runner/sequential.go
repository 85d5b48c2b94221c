package runner

import (
	"context"

	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/hooks"
	"github.com/vk/perfgrid/internal/pipeline"
)

// Sequential runs nodes one at a time in topological order.
type Sequential struct {
	hooks *hooks.Manager
}

// NewSequential creates a sequential runner.
func NewSequential(opts ...Option) *Sequential {
	o := buildOptions(opts)
	return &Sequential{hooks: hooks.NewManager(o.hooks...)}
}

// Run executes p against store. Validation errors are returned before any
// node runs and before any hook fires.
func (r *Sequential) Run(ctx context.Context, p *pipeline.Pipeline, store *catalog.Store) (*catalog.Store, error) {
	logger := ctxlog.FromContext(ctx)

	order, err := prepare(p, store)
	if err != nil {
		return store, err
	}

	info := runInfo(ctx, KindSequential, p, order)
	ctx = r.hooks.BeforePipelineRun(ctx, info)

	for i, n := range order {
		if err := ctx.Err(); err != nil {
			runErr := &PipelineExecutionError{Node: n.Name(), Err: err}
			r.hooks.AfterPipelineRun(ctx, info, runErr)
			return store, runErr
		}

		logger.Debug("Executing node.", "node", n.Name(), "step", i+1, "of", len(order))
		if err := execute(ctx, r.hooks, n, store); err != nil {
			runErr := &PipelineExecutionError{Node: n.Name(), Err: err}
			r.hooks.AfterPipelineRun(ctx, info, runErr)
			return store, runErr
		}
	}

	r.hooks.AfterPipelineRun(ctx, info, nil)
	return store, nil
}

var _ Runner = (*Sequential)(nil)
