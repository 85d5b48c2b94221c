// Package table provides the small column-oriented table type that flows
// through the student-performance pipelines. A Table is immutable by
// convention: every transformation returns a new Table and leaves its input
// untouched, so a value read from the dataset store can be shared by several
// nodes at once.
package table
