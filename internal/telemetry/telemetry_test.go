package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/hooks"
	"github.com/vk/perfgrid/internal/node"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/runner"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testPipeline(t *testing.T, failing bool) *pipeline.Pipeline {
	t.Helper()
	second := func(v int) (int, error) {
		if failing {
			return 0, errors.New("boom")
		}
		return v * 2, nil
	}
	return pipeline.MustNew(
		node.MustNew("first", func(v int) int { return v + 1 }, node.Single("seed"), node.Single("a"), node.WithTags("prep")),
		node.MustNew("second", second, node.Single("a"), node.Positional("b")),
	)
}

func seededStore() *catalog.Store {
	s := catalog.NewStore()
	s.Seed("seed", 1)
	return s
}

func TestMetrics(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		// --- Arrange ---
		reg := prometheus.NewRegistry()
		m, err := NewMetrics(reg)
		require.NoError(t, err)

		// --- Act ---
		_, err = runner.NewSequential(runner.WithHooks(m)).Run(context.Background(), testPipeline(t, false), seededStore())

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineRuns.WithLabelValues(StatusSuccess)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeRuns.WithLabelValues("first", StatusSuccess)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeRuns.WithLabelValues("second", StatusSuccess)))
		assert.Equal(t, 2.0, testutil.ToFloat64(m.datasetsProduced))
		assert.Equal(t, 0.0, testutil.ToFloat64(m.activeNodes))
		assert.Equal(t, 2, testutil.CollectAndCount(m.nodeDuration))
	})

	t.Run("failure", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m, err := NewMetrics(reg)
		require.NoError(t, err)

		_, err = runner.NewSequential(runner.WithHooks(m)).Run(context.Background(), testPipeline(t, true), seededStore())

		require.Error(t, err)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.pipelineRuns.WithLabelValues(StatusFailure)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.nodeRuns.WithLabelValues("second", StatusFailure)))
		assert.Equal(t, 0.0, testutil.ToFloat64(m.activeNodes))
	})

	t.Run("double registration fails", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := NewMetrics(reg)
		require.NoError(t, err)
		_, err = NewMetrics(reg)
		assert.ErrorContains(t, err, "failed to register metric")
	})
}

func TestTracing(t *testing.T) {
	t.Run("spans per run and node", func(t *testing.T) {
		// --- Arrange ---
		spanRecorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
		defer tp.Shutdown(context.Background())
		ctx := hooks.WithRunID(context.Background(), "run-7")

		// --- Act ---
		_, err := runner.NewSequential(runner.WithHooks(NewTracing(tp))).Run(ctx, testPipeline(t, false), seededStore())

		// --- Assert ---
		require.NoError(t, err)
		spans := spanRecorder.Ended()
		require.Len(t, spans, 3)
		assert.Equal(t, "first", spans[0].Name())
		assert.Equal(t, "second", spans[1].Name())
		root := spans[2]
		assert.Equal(t, "pipeline.Run", root.Name())
		assert.Equal(t, root.SpanContext().SpanID(), spans[0].Parent().SpanID())
		assert.Equal(t, codes.Ok, root.Status().Code)

		var runID string
		for _, kv := range root.Attributes() {
			if kv.Key == "pipeline.run_id" {
				runID = kv.Value.AsString()
			}
		}
		assert.Equal(t, "run-7", runID)
	})

	t.Run("failed node marks spans as errors", func(t *testing.T) {
		spanRecorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
		defer tp.Shutdown(context.Background())

		_, err := runner.NewParallel(2, runner.WithHooks(NewTracing(tp))).Run(context.Background(), testPipeline(t, true), seededStore())

		require.Error(t, err)
		spans := spanRecorder.Ended()
		require.Len(t, spans, 3)
		assert.Equal(t, "second", spans[1].Name())
		assert.Equal(t, codes.Error, spans[1].Status().Code)
		assert.NotEmpty(t, spans[1].Events(), "error should be recorded")
		assert.Equal(t, codes.Error, spans[2].Status().Code)
	})
}

func TestNewStdoutTracerProvider(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewStdoutTracerProvider(&buf)
	require.NoError(t, err)

	_, err = runner.NewSequential(runner.WithHooks(NewTracing(tp))).Run(context.Background(), testPipeline(t, false), seededStore())
	require.NoError(t, err)
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "pipeline.Run")
	assert.Contains(t, buf.String(), `"second"`)
}
