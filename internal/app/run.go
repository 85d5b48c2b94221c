package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/hooks"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
	"github.com/vk/perfgrid/internal/runner"
	"github.com/vk/perfgrid/internal/telemetry"
)

// Run executes the selected pipeline once in a new session.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	p, err := a.SelectPipeline()
	if err != nil {
		return err
	}
	if p.Len() == 0 {
		a.logger.Warn("No nodes selected, execution not required.")
		return nil
	}

	r, shutdown, err := a.newRunner(ctx)
	if err != nil {
		return err
	}
	defer shutdown()

	cat, err := a.model.Catalog()
	if err != nil {
		return fmt.Errorf("failed to build dataset catalog: %w", err)
	}
	sess, err := a.sessions.NewSession(ctx, cat, a.params)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	runErr := sess.Run(ctx, p, r)
	if closeErr := sess.Close(ctx); closeErr != nil {
		return errors.Join(runErr, closeErr)
	}
	if runErr != nil {
		return runErr
	}

	a.logger.Info("🏁 Execution finished.", "run_id", sess.ID(), "datasets", sess.Store().Len())
	a.logger.Debug("App.Run method finished.")
	return nil
}

// Plan writes the execution order of the selected pipeline to w.
func (a *App) Plan(ctx context.Context, w io.Writer) error {
	p, err := a.SelectPipeline()
	if err != nil {
		return err
	}
	order, err := runner.Plan(p)
	if err != nil {
		return err
	}
	for i, n := range order {
		line := fmt.Sprintf("%d. %s", i+1, n)
		if tags := n.Tags(); len(tags) > 0 {
			line += " [" + strings.Join(tags, ", ") + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	ctxlog.FromContext(ctx).Debug("Plan written.", "nodes", len(order))
	return nil
}

// SelectPipeline resolves the configured pipeline name and applies the node
// filters. Each filter narrows the result of the previous one.
func (a *App) SelectPipeline() (*pipeline.Pipeline, error) {
	name := cmp.Or(a.config.Pipeline, a.model.Run.Pipeline, registry.DefaultPipeline)
	p, err := a.registry.Pipeline(name)
	if err != nil {
		return nil, err
	}

	if len(a.config.Tags) > 0 {
		p = p.OnlyTags(a.config.Tags...)
	}
	if len(a.config.FromNodes) > 0 {
		if p, err = p.FromNodes(a.config.FromNodes...); err != nil {
			return nil, err
		}
	}
	if len(a.config.ToNodes) > 0 {
		if p, err = p.ToNodes(a.config.ToNodes...); err != nil {
			return nil, err
		}
	}
	if len(a.config.OnlyNodes) > 0 {
		if p, err = p.Only(a.config.OnlyNodes...); err != nil {
			return nil, err
		}
	}
	if len(a.config.ToOutputs) > 0 {
		if p, err = p.ToOutputs(a.config.ToOutputs...); err != nil {
			return nil, err
		}
	}
	a.logger.Debug("Pipeline selected.", "pipeline", name, "nodes", p.Len())
	return p, nil
}

// newRunner builds the configured runner. The returned function flushes the
// trace exporter and must be called once the run is over.
func (a *App) newRunner(ctx context.Context) (runner.Runner, func(), error) {
	kind := cmp.Or(a.config.Runner, a.model.Run.Runner, runner.KindSequential)
	workers := cmp.Or(a.config.Workers, a.model.Run.Workers, runner.DefaultWorkers)

	hs := []hooks.Hook{hooks.Logging{}, a.metrics}
	shutdown := func() {}
	if a.config.Trace {
		tp, err := telemetry.NewStdoutTracerProvider(a.outW)
		if err != nil {
			return nil, nil, err
		}
		hs = append(hs, telemetry.NewTracing(tp))
		shutdown = func() {
			if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
				a.logger.Error("Failed to flush traces.", "error", err)
			}
		}
	}

	r, err := runner.New(kind, workers, runner.WithHooks(hs...))
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("Runner configured.", "runner", kind, "workers", workers, "hooks", len(hs))
	return r, shutdown, nil
}
