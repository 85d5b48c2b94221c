package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDataset is the sentinel wrapped by MissingDatasetError.
	ErrMissingDataset = errors.New("missing dataset")
	// ErrConflict is the sentinel wrapped by ConflictError.
	ErrConflict = errors.New("conflicting dataset write")
)

// MissingDatasetError is returned when a dataset is read before it has been
// seeded or produced.
type MissingDatasetError struct {
	Name string
	// Node is the consumer that asked for the dataset, if known.
	Node string
}

func (e *MissingDatasetError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("dataset %q required by node %q has not been produced or seeded", e.Name, e.Node)
	}
	return fmt.Sprintf("dataset %q has not been produced or seeded", e.Name)
}

func (e *MissingDatasetError) Unwrap() error { return ErrMissingDataset }

// ConflictError is returned when two different nodes write the same dataset
// name in one run.
type ConflictError struct {
	Name     string
	Existing string
	Incoming string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("dataset %q already produced by node %q, refusing write from node %q", e.Name, e.Existing, e.Incoming)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
