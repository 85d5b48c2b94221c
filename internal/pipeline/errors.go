package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateNodeName is the sentinel wrapped by DuplicateNodeNameError.
	ErrDuplicateNodeName = errors.New("duplicate node name")
	// ErrAmbiguousProducer is the sentinel wrapped by AmbiguousProducerError.
	ErrAmbiguousProducer = errors.New("ambiguous producer")
	// ErrCyclicPipeline is the sentinel wrapped by CyclicPipelineError.
	ErrCyclicPipeline = errors.New("cyclic pipeline")
	// ErrUnknownNode is the sentinel wrapped by UnknownNodeError.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownDataset is the sentinel wrapped by UnknownDatasetError.
	ErrUnknownDataset = errors.New("unknown dataset")
)

// DuplicateNodeNameError is returned when two nodes of one pipeline share a
// name.
type DuplicateNodeNameError struct {
	Name string
}

func (e *DuplicateNodeNameError) Error() string {
	return fmt.Sprintf("node name %q is declared more than once", e.Name)
}

func (e *DuplicateNodeNameError) Unwrap() error { return ErrDuplicateNodeName }

// AmbiguousProducerError is returned when more than one node declares the
// same output dataset. Producers are sorted by name.
type AmbiguousProducerError struct {
	Dataset   string
	Producers []string
}

func (e *AmbiguousProducerError) Error() string {
	return fmt.Sprintf("dataset %q is produced by more than one node: %s", e.Dataset, strings.Join(e.Producers, ", "))
}

func (e *AmbiguousProducerError) Unwrap() error { return ErrAmbiguousProducer }

// CyclicPipelineError lists every node taking part in a dependency cycle, in
// declaration order.
type CyclicPipelineError struct {
	Nodes []string
}

func (e *CyclicPipelineError) Error() string {
	return fmt.Sprintf("pipeline has a dependency cycle between nodes: %s", strings.Join(e.Nodes, ", "))
}

func (e *CyclicPipelineError) Unwrap() error { return ErrCyclicPipeline }

// UnknownNodeError is returned by filters given node names that are not part
// of the pipeline.
type UnknownNodeError struct {
	Names []string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("pipeline does not contain nodes: %s", strings.Join(e.Names, ", "))
}

func (e *UnknownNodeError) Unwrap() error { return ErrUnknownNode }

// UnknownDatasetError is returned by filters given dataset names that no
// node of the pipeline produces.
type UnknownDatasetError struct {
	Names []string
}

func (e *UnknownDatasetError) Error() string {
	return fmt.Sprintf("pipeline does not produce datasets: %s", strings.Join(e.Names, ", "))
}

func (e *UnknownDatasetError) Unwrap() error { return ErrUnknownDataset }
