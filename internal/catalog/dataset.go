package catalog

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/vk/perfgrid/internal/ctxlog"
)

// Dataset knows how to load and save a single named value.
type Dataset interface {
	Load(ctx context.Context) (any, error)
	Save(ctx context.Context, value any) error
	Describe() string
}

// Dataset types understood by New.
const (
	TypeCSV    = "csv"
	TypeJSON   = "json"
	TypeMemory = "memory"
	TypeHTTP   = "http"
)

// Definition declares a dataset in the project configuration.
type Definition struct {
	Name     string
	Type     string
	Filepath string
	// URL, Format and Timeout apply to http datasets.
	URL     string
	Format  string
	Timeout time.Duration
}

// MemoryDataset keeps a value in memory between Save and Load.
type MemoryDataset struct {
	mu    sync.Mutex
	value any
	set   bool
}

// NewMemoryDataset returns a memory dataset, optionally holding an initial value.
func NewMemoryDataset(initial ...any) *MemoryDataset {
	d := &MemoryDataset{}
	if len(initial) > 0 {
		d.value, d.set = initial[0], true
	}
	return d
}

func (d *MemoryDataset) Load(ctx context.Context) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.set {
		return nil, fmt.Errorf("memory dataset has no data")
	}
	return d.value, nil
}

func (d *MemoryDataset) Save(ctx context.Context, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value, d.set = value, true
	return nil
}

func (d *MemoryDataset) Describe() string { return "memory" }

// Catalog maps dataset names to their persistent representation.
type Catalog struct {
	datasets map[string]Dataset
}

// New builds a catalog from definitions.
func New(defs ...Definition) (*Catalog, error) {
	c := &Catalog{datasets: make(map[string]Dataset, len(defs))}
	for _, def := range defs {
		ds, err := newDataset(def)
		if err != nil {
			return nil, err
		}
		if err := c.Add(def.Name, ds); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newDataset(def Definition) (Dataset, error) {
	switch def.Type {
	case TypeCSV:
		return NewCSVDataset(def.Filepath), nil
	case TypeJSON:
		return NewJSONDataset(def.Filepath), nil
	case TypeMemory:
		return NewMemoryDataset(), nil
	case TypeHTTP:
		return NewHTTPDataset(def.URL, def.Format, def.Timeout)
	default:
		return nil, fmt.Errorf("dataset %q: unknown type %q", def.Name, def.Type)
	}
}

// Add registers a dataset under name.
func (c *Catalog) Add(name string, ds Dataset) error {
	if _, exists := c.datasets[name]; exists {
		return fmt.Errorf("dataset %q is already defined in the catalog", name)
	}
	c.datasets[name] = ds
	return nil
}

// Dataset returns the dataset registered under name.
func (c *Catalog) Dataset(name string) (Dataset, bool) {
	ds, ok := c.datasets[name]
	return ds, ok
}

// Names returns the defined dataset names in lexical order.
func (c *Catalog) Names() []string {
	return slices.Sorted(maps.Keys(c.datasets))
}

// SeedInto loads each named dataset that has a definition and seeds it into
// the store. Names without a definition are skipped; the runner reports them
// if they are still missing when a run starts.
func (c *Catalog) SeedInto(ctx context.Context, store *Store, names []string) error {
	logger := ctxlog.FromContext(ctx)
	for _, name := range names {
		ds, ok := c.datasets[name]
		if !ok || store.Has(name) {
			continue
		}
		value, err := ds.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load dataset %q from %s: %w", name, ds.Describe(), err)
		}
		logger.Debug("Seeded dataset from catalog.", "dataset", name, "source", ds.Describe())
		store.Seed(name, value)
	}
	return nil
}

// Persist saves every node-produced entry that has a definition.
func (c *Catalog) Persist(ctx context.Context, store *Store) error {
	logger := ctxlog.FromContext(ctx)
	for _, e := range store.Produced() {
		ds, ok := c.datasets[e.Name]
		if !ok {
			continue
		}
		if err := ds.Save(ctx, e.Value); err != nil {
			return fmt.Errorf("failed to save dataset %q to %s: %w", e.Name, ds.Describe(), err)
		}
		logger.Info("💾 Saved dataset", "dataset", e.Name, "target", ds.Describe())
	}
	return nil
}
