package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/vk/perfgrid/internal/hooks"
	"github.com/vk/perfgrid/internal/node"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by this package.
const TracerName = "perfgrid.runner"

// Tracing is a hook that opens one span per pipeline run and a child span
// per node.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing creates the hook. A nil provider falls back to the global one.
func NewTracing(tp trace.TracerProvider) *Tracing {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{tracer: tp.Tracer(TracerName)}
}

// NewStdoutTracerProvider returns a provider that writes finished spans to
// w as JSON. Callers must Shutdown it to flush.
func NewStdoutTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func (t *Tracing) BeforePipelineRun(ctx context.Context, info hooks.RunInfo) context.Context {
	ctx, _ = t.tracer.Start(ctx, "pipeline.Run",
		trace.WithAttributes(
			attribute.String("pipeline.run_id", info.RunID),
			attribute.String("pipeline.runner", info.Runner),
			attribute.Int("pipeline.node_count", len(info.Nodes)),
			attribute.StringSlice("pipeline.inputs", info.Inputs),
		),
	)
	return ctx
}

func (t *Tracing) AfterPipelineRun(ctx context.Context, _ hooks.RunInfo, err error) {
	end(trace.SpanFromContext(ctx), err)
}

func (t *Tracing) BeforeNodeRun(ctx context.Context, n *node.Node, _ map[string]any) context.Context {
	ctx, _ = t.tracer.Start(ctx, n.Name(),
		trace.WithAttributes(
			attribute.String("pipeline.node", n.Name()),
			attribute.StringSlice("pipeline.node.inputs", n.Inputs()),
			attribute.StringSlice("pipeline.node.outputs", n.Outputs()),
			attribute.StringSlice("pipeline.node.tags", n.Tags()),
		),
	)
	return ctx
}

func (t *Tracing) AfterNodeRun(ctx context.Context, _ *node.Node, _ map[string]any, _ time.Duration) {
	end(trace.SpanFromContext(ctx), nil)
}

func (t *Tracing) OnNodeError(ctx context.Context, _ *node.Node, err error, _ time.Duration) {
	end(trace.SpanFromContext(ctx), err)
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

var _ hooks.Hook = (*Tracing)(nil)
