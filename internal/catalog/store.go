package catalog

import (
	"maps"
	"slices"
	"sync"
)

// Entry is a single named value in the store.
type Entry struct {
	Name  string
	Value any
	// ProducedBy is the name of the node that wrote the entry. It is empty for
	// seeded entries.
	ProducedBy string
}

// Seeded reports whether the entry was supplied before the run started.
func (e Entry) Seeded() bool {
	return e.ProducedBy == ""
}

// Store is an in-memory, concurrency-safe registry of named datasets for one run.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Seed inserts an externally supplied value. Seeding an existing name
// replaces the previous seed.
func (s *Store) Seed(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = Entry{Name: name, Value: value}
}

// Put records a value produced by the named node. A name already produced by
// a different node yields a ConflictError; seeded values may be overwritten.
func (s *Store) Put(name string, value any, producer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkConflict(name, producer); err != nil {
		return err
	}
	s.entries[name] = Entry{Name: name, Value: value, ProducedBy: producer}
	return nil
}

// PutAll records every value produced by one node, or none of them. Names are
// checked in lexical order, so the first conflicting name is reported.
func (s *Store) PutAll(values map[string]any, producer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := slices.Sorted(maps.Keys(values))
	for _, name := range names {
		if err := s.checkConflict(name, producer); err != nil {
			return err
		}
	}
	for _, name := range names {
		s.entries[name] = Entry{Name: name, Value: values[name], ProducedBy: producer}
	}
	return nil
}

// checkConflict must be called with the write lock held.
func (s *Store) checkConflict(name, producer string) error {
	if existing, ok := s.entries[name]; ok && !existing.Seeded() && existing.ProducedBy != producer {
		return &ConflictError{Name: name, Existing: existing.ProducedBy, Incoming: producer}
	}
	return nil
}

// Get returns the value stored under name.
func (s *Store) Get(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return nil, &MissingDatasetError{Name: name}
	}
	return e.Value, nil
}

// Has reports whether name has been seeded or produced.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[name]
	return ok
}

// Entry returns the full entry for name.
func (s *Store) Entry(name string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return e, ok
}

// Names returns all dataset names in lexical order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.entries))
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of the name to value mapping.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.entries))
	for k, e := range s.entries {
		out[k] = e.Value
	}
	return out
}

// Produced returns the entries written by nodes, ordered by name.
func (s *Store) Produced() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, name := range slices.Sorted(maps.Keys(s.entries)) {
		if e := s.entries[name]; !e.Seeded() {
			out = append(out, e)
		}
	}
	return out
}
