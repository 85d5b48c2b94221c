package hooks

import (
	"context"
	"time"

	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/node"
)

// Logging reports run progress through the context logger.
type Logging struct {
	Base
}

func (Logging) BeforePipelineRun(ctx context.Context, info RunInfo) context.Context {
	ctxlog.FromContext(ctx).Info("🚀 Starting pipeline run.", "run_id", info.RunID, "runner", info.Runner, "nodes", len(info.Nodes))
	return ctx
}

func (Logging) AfterPipelineRun(ctx context.Context, info RunInfo, err error) {
	logger := ctxlog.FromContext(ctx)
	if err != nil {
		logger.Error("❌ Pipeline run failed.", "run_id", info.RunID, "error", err)
		return
	}
	logger.Info("🏁 Pipeline run completed.", "run_id", info.RunID)
}

func (Logging) BeforeNodeRun(ctx context.Context, n *node.Node, _ map[string]any) context.Context {
	ctxlog.FromContext(ctx).Info("▶️ Running node", "node", n.Name(), "inputs", n.Inputs())
	return ctx
}

func (Logging) AfterNodeRun(ctx context.Context, n *node.Node, _ map[string]any, elapsed time.Duration) {
	ctxlog.FromContext(ctx).Info("✅ Finished node", "node", n.Name(), "outputs", n.Outputs(), "duration", elapsed)
}

func (Logging) OnNodeError(ctx context.Context, n *node.Node, err error, elapsed time.Duration) {
	ctxlog.FromContext(ctx).Error("Node execution failed.", "node", n.Name(), "error", err, "duration", elapsed)
}
