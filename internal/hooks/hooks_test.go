package hooks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/node"
)

type ctxKey string

// tagging adds its name to the context chain so ordering can be asserted.
type tagging struct {
	Base
	name string
	seen *[]string
}

func (h tagging) BeforeNodeRun(ctx context.Context, n *node.Node, _ map[string]any) context.Context {
	prev, _ := ctx.Value(ctxKey("chain")).(string)
	return context.WithValue(ctx, ctxKey("chain"), prev+h.name)
}

func (h tagging) AfterNodeRun(ctx context.Context, n *node.Node, _ map[string]any, _ time.Duration) {
	chain, _ := ctx.Value(ctxKey("chain")).(string)
	*h.seen = append(*h.seen, h.name+":"+chain)
}

func testNode(t *testing.T) *node.Node {
	t.Helper()
	n, err := node.New("double", func(x int) int { return 2 * x }, node.Single("x"), node.Single("y"))
	require.NoError(t, err)
	return n
}

func TestManager_OrderAndContextChaining(t *testing.T) {
	// --- Arrange ---
	var seen []string
	m := NewManager(tagging{name: "a", seen: &seen}, nil, tagging{name: "b", seen: &seen})
	n := testNode(t)

	// --- Act ---
	ctx := m.BeforeNodeRun(context.Background(), n, nil)
	m.AfterNodeRun(ctx, n, nil, time.Millisecond)

	// --- Assert ---
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"a:ab", "b:ab"}, seen)
}

func TestManager_NilIsNoop(t *testing.T) {
	var m *Manager
	ctx := context.Background()
	assert.Equal(t, ctx, m.BeforePipelineRun(ctx, RunInfo{}))
	assert.NotPanics(t, func() { m.AfterPipelineRun(ctx, RunInfo{}, nil) })
	assert.Zero(t, m.Len())
}

func TestRecorder(t *testing.T) {
	// --- Arrange ---
	rec := &Recorder{}
	m := NewManager(rec)
	n := testNode(t)
	boom := errors.New("boom")

	// --- Act ---
	ctx := m.BeforePipelineRun(context.Background(), RunInfo{})
	m.BeforeNodeRun(ctx, n, nil)
	m.AfterNodeRun(ctx, n, nil, 0)
	m.BeforeNodeRun(ctx, n, nil)
	m.OnNodeError(ctx, n, boom, 0)
	m.AfterPipelineRun(ctx, RunInfo{}, boom)

	// --- Assert ---
	events := rec.Events()
	require.Len(t, events, 6)
	assert.Equal(t, EventBeforePipeline, events[0].Kind)
	assert.Equal(t, EventAfterPipeline, events[5].Kind)
	assert.ErrorIs(t, events[5].Err, boom)
	assert.Equal(t, []string{"double", "double"}, rec.Started())
	assert.Equal(t, []string{"double"}, rec.Executed())
	assert.Equal(t, []string{"double"}, rec.Failed())
}

func TestLogging(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	h := Logging{}
	n := testNode(t)
	info := RunInfo{RunID: "run-1", Runner: "sequential", Nodes: []string{"double"}}

	// --- Act ---
	ctx = h.BeforePipelineRun(ctx, info)
	ctx = h.BeforeNodeRun(ctx, n, nil)
	h.AfterNodeRun(ctx, n, nil, time.Second)
	h.OnNodeError(ctx, n, errors.New("kaput"), time.Second)
	h.AfterPipelineRun(ctx, info, errors.New("kaput"))

	// --- Assert ---
	out := buf.String()
	assert.Contains(t, out, "Starting pipeline run")
	assert.Contains(t, out, "run_id=run-1")
	assert.Contains(t, out, "node=double")
	assert.Contains(t, out, "Finished node")
	assert.Contains(t, out, "error=kaput")
	assert.Contains(t, out, "Pipeline run failed")
}

func TestRunID(t *testing.T) {
	assert.Empty(t, RunID(context.Background()))
	assert.Equal(t, "abc", RunID(WithRunID(context.Background(), "abc")))
}
