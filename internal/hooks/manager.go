package hooks

import (
	"context"
	"time"

	"github.com/vk/perfgrid/internal/node"
)

// Manager fans every call out to its hooks in registration order. Its hook
// list is fixed at construction, so calls need no locking.
type Manager struct {
	hooks []Hook
}

// NewManager returns a manager for the given hooks. Nil hooks are dropped.
func NewManager(hooks ...Hook) *Manager {
	m := &Manager{}
	for _, h := range hooks {
		if h != nil {
			m.hooks = append(m.hooks, h)
		}
	}
	return m
}

// Len returns the number of registered hooks.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.hooks)
}

func (m *Manager) list() []Hook {
	if m == nil {
		return nil
	}
	return m.hooks
}

func (m *Manager) BeforePipelineRun(ctx context.Context, info RunInfo) context.Context {
	for _, h := range m.list() {
		ctx = h.BeforePipelineRun(ctx, info)
	}
	return ctx
}

func (m *Manager) AfterPipelineRun(ctx context.Context, info RunInfo, err error) {
	for _, h := range m.list() {
		h.AfterPipelineRun(ctx, info, err)
	}
}

func (m *Manager) BeforeNodeRun(ctx context.Context, n *node.Node, inputs map[string]any) context.Context {
	for _, h := range m.list() {
		ctx = h.BeforeNodeRun(ctx, n, inputs)
	}
	return ctx
}

func (m *Manager) AfterNodeRun(ctx context.Context, n *node.Node, outputs map[string]any, elapsed time.Duration) {
	for _, h := range m.list() {
		h.AfterNodeRun(ctx, n, outputs, elapsed)
	}
}

func (m *Manager) OnNodeError(ctx context.Context, n *node.Node, err error, elapsed time.Duration) {
	for _, h := range m.list() {
		h.OnNodeError(ctx, n, err, elapsed)
	}
}

var _ Hook = (*Manager)(nil)
