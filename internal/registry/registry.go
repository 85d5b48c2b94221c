package registry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/pipeline"
)

// DefaultPipeline is the name under which the sum of all registered
// pipelines is exposed.
const DefaultPipeline = "__default__"

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the named pipelines for a single application instance.
type Registry struct {
	pipelines map[string]*pipeline.Pipeline
	order     []string
	logger    *slog.Logger
}

// New creates and initializes a new Registry instance that logs through the
// logger carried by ctx.
func New(ctx context.Context) *Registry {
	return &Registry{
		pipelines: make(map[string]*pipeline.Pipeline),
		logger:    ctxlog.FromContext(ctx),
	}
}

// RegisterPipeline stores a pipeline under a name. Registering the same name
// twice, or the reserved default name, is a programming error and panics.
func (r *Registry) RegisterPipeline(name string, p *pipeline.Pipeline) {
	if name == DefaultPipeline {
		panic(fmt.Sprintf("pipeline name '%s' is reserved", name))
	}
	if _, exists := r.pipelines[name]; exists {
		panic(fmt.Sprintf("pipeline with name '%s' already registered", name))
	}
	r.logger.Debug("Registering pipeline.", "name", name, "nodes", p.Len())
	r.pipelines[name] = p
	r.order = append(r.order, name)
}

// Names returns the registered pipeline names in registration order,
// followed by the default pipeline when anything is registered.
func (r *Registry) Names() []string {
	names := slices.Clone(r.order)
	if len(names) > 0 {
		names = append(names, DefaultPipeline)
	}
	return names
}

// Pipeline returns the named pipeline. The default name resolves to the sum
// of every registered pipeline.
func (r *Registry) Pipeline(name string) (*pipeline.Pipeline, error) {
	if name == DefaultPipeline {
		return r.Default()
	}
	p, ok := r.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("pipeline '%s' is not registered (available: %v)", name, r.Names())
	}
	return p, nil
}

// Default sums all registered pipelines in registration order.
func (r *Registry) Default() (*pipeline.Pipeline, error) {
	all := make([]*pipeline.Pipeline, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.pipelines[name])
	}
	p, err := pipeline.Sum(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to build default pipeline: %w", err)
	}
	return p, nil
}
