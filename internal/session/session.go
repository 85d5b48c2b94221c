// Package session defines the core interfaces for creating and managing a
// pipeline run. A session owns the dataset store for exactly one run: it is
// seeded when the session is created, filled by the runner, and persisted
// or discarded when the session is closed.
package session

import (
	"context"

	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/runner"
)

// SessionFactory creates a run Session. Different implementations can
// support various backends for loading and persisting datasets.
type SessionFactory interface {
	NewSession(
		ctx context.Context,
		cat *catalog.Catalog,
		params map[string]any,
	) (Session, error)
}

// Session represents a single pipeline run and manages its lifecycle.
type Session interface {
	// ID returns the unique run identifier.
	ID() string
	// Store returns the store owned by this run.
	Store() *catalog.Store
	// Run executes the pipeline once. A session cannot be run twice.
	Run(ctx context.Context, p *pipeline.Pipeline, r runner.Runner) error
	// Close releases any resources held by the session. It accepts a context
	// to allow for graceful cleanup operations.
	Close(ctx context.Context) error
}
