// Package dag provides the directed acyclic graph used to order pipeline
// nodes. Vertices are identified by string IDs and remember the order in
// which they were added; every query that returns several IDs (dependencies,
// dependents, topological order, cycle members) uses that insertion order to
// break ties, so results are deterministic for a given construction sequence.
package dag
