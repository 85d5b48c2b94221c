// Package hooks defines the lifecycle callbacks a runner invokes around a
// pipeline run and around every node.
//
// Hooks run inline with execution and must be safe for concurrent use, since
// the parallel runner calls node hooks from several workers at once. A hook
// cannot stop a run: failures are reported through the runner's error, and
// hooks only observe them.
package hooks

import (
	"context"
	"time"

	"github.com/vk/perfgrid/internal/node"
)

// RunInfo describes the run a pipeline hook is observing.
type RunInfo struct {
	RunID  string
	Runner string
	// Nodes holds node names in execution order.
	Nodes []string
	// Inputs holds the free input datasets of the pipeline.
	Inputs []string
}

// Hook observes pipeline execution. The Before* methods may return a derived
// context, which is then passed to the matching After* or OnNodeError call
// and, for nodes, to the node function itself.
type Hook interface {
	BeforePipelineRun(ctx context.Context, info RunInfo) context.Context
	AfterPipelineRun(ctx context.Context, info RunInfo, err error)
	BeforeNodeRun(ctx context.Context, n *node.Node, inputs map[string]any) context.Context
	AfterNodeRun(ctx context.Context, n *node.Node, outputs map[string]any, elapsed time.Duration)
	OnNodeError(ctx context.Context, n *node.Node, err error, elapsed time.Duration)
}

// Base implements Hook with no-ops. Embed it to override only some methods.
type Base struct{}

func (Base) BeforePipelineRun(ctx context.Context, _ RunInfo) context.Context { return ctx }
func (Base) AfterPipelineRun(context.Context, RunInfo, error)                 {}
func (Base) BeforeNodeRun(ctx context.Context, _ *node.Node, _ map[string]any) context.Context {
	return ctx
}
func (Base) AfterNodeRun(context.Context, *node.Node, map[string]any, time.Duration) {}
func (Base) OnNodeError(context.Context, *node.Node, error, time.Duration)          {}

type runIDKey struct{}

// WithRunID stores the run identifier in the context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run identifier stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
