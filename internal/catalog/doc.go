// Package catalog holds named datasets for a pipeline run.
//
// # Store
//
// Store is the per-run registry of named artifacts: raw tables, parameters,
// trained estimators and derived tables. It is created fresh for every run,
// seeded with external inputs, filled in as nodes complete, and discarded
// once the run's outputs have been persisted.
//
// Every entry remembers the node that produced it. A name may be produced by
// at most one node per run; a second producer is rejected with ConflictError.
//
// # Concurrency Model
//
// The store guards its index with a sync.RWMutex. Reads of finalized entries
// proceed concurrently; insertions are serialized. Each dataset name is
// written by a single producer, so writers never race on the same key, but
// the map itself must still be protected during insertion.
//
// # Catalog
//
// Catalog maps dataset names to Dataset implementations that know how to load
// and save a value (CSV, JSON, memory). It is the bridge between the
// in-memory Store and whatever lives on disk before and after a run.
package catalog
