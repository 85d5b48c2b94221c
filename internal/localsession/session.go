// Package localsession provides a concrete implementation of the session.Session
// and session.SessionFactory interfaces for local, in-process execution.
package localsession

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/ctxlog"
	"github.com/vk/perfgrid/internal/hooks"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/registry"
	"github.com/vk/perfgrid/internal/runner"
	"github.com/vk/perfgrid/internal/session"
)

// ErrAlreadyRun is returned when Run is called on a session twice.
var ErrAlreadyRun = errors.New("session has already run")

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct{}

// NewSession creates a session with a fresh store seeded with the parameters.
// Each top-level parameter is seeded as "params:<name>", nested maps are
// flattened with dots ("params:model.alpha"), and the whole map is seeded
// as "parameters".
func (f *SessionFactory) NewSession(
	ctx context.Context,
	cat *catalog.Catalog,
	params map[string]any,
) (session.Session, error) {
	id := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("run_id", id)

	if cat == nil {
		var err error
		if cat, err = catalog.New(); err != nil {
			return nil, err
		}
	}

	store := catalog.NewStore()
	if params == nil {
		params = map[string]any{}
	}
	store.Seed(registry.ParametersDataset, params)
	seedParams(store, "", params)

	logger.Debug("Created session.", "parameters", len(params), "datasets", len(cat.Names()))
	return &Session{
		id:      id,
		catalog: cat,
		store:   store,
	}, nil
}

func seedParams(store *catalog.Store, prefix string, params map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(params)) {
		name := prefix + key
		store.Seed(registry.ParamPrefix+name, params[key])
		if nested, ok := params[key].(map[string]any); ok {
			seedParams(store, name+".", nested)
		}
	}
}

// Session implements session.Session for local runs.
type Session struct {
	id      string
	catalog *catalog.Catalog
	store   *catalog.Store

	mu     sync.Mutex
	ran    bool
	runErr error
	closed bool
}

// ID returns the run identifier.
func (s *Session) ID() string { return s.id }

// Store returns the store owned by this run.
func (s *Session) Store() *catalog.Store { return s.store }

// Run loads the pipeline's free inputs from the catalog and executes it.
func (s *Session) Run(ctx context.Context, p *pipeline.Pipeline, r runner.Runner) error {
	s.mu.Lock()
	if s.ran {
		s.mu.Unlock()
		return ErrAlreadyRun
	}
	s.ran = true
	s.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("run_id", s.id)
	ctx = ctxlog.WithLogger(hooks.WithRunID(ctx, s.id), logger)

	err := s.run(ctx, p, r)

	s.mu.Lock()
	s.runErr = err
	s.mu.Unlock()
	return err
}

func (s *Session) run(ctx context.Context, p *pipeline.Pipeline, r runner.Runner) error {
	if err := s.catalog.SeedInto(ctx, s.store, p.Inputs()); err != nil {
		return fmt.Errorf("failed to seed pipeline inputs: %w", err)
	}
	_, err := r.Run(ctx, p, s.store)
	return err
}

// Close persists produced datasets that the catalog defines. Nothing is
// persisted when the run failed or never happened. Calling Close again is a
// no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("run_id", s.id)
	if s.closed {
		return nil
	}
	s.closed = true

	if !s.ran || s.runErr != nil {
		logger.Debug("Skipping persistence for unsuccessful session.")
		return nil
	}

	if err := s.catalog.Persist(ctxlog.WithLogger(ctx, logger), s.store); err != nil {
		return fmt.Errorf("failed to persist session %s: %w", s.id, err)
	}
	return nil
}

var _ session.SessionFactory = (*SessionFactory)(nil)
var _ session.Session = (*Session)(nil)
