package runner

import (
	"errors"
	"fmt"
)

// ErrPipelineExecution is the sentinel matched by PipelineExecutionError.
var ErrPipelineExecution = errors.New("pipeline execution failed")

// PipelineExecutionError reports the node that stopped a run and the
// underlying cause. errors.As reaches the node-level error through Unwrap.
type PipelineExecutionError struct {
	Node string
	Err  error
}

func (e *PipelineExecutionError) Error() string {
	return fmt.Sprintf("pipeline execution failed at node %q: %v", e.Node, e.Err)
}

func (e *PipelineExecutionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrPipelineExecution) true for any
// PipelineExecutionError.
func (e *PipelineExecutionError) Is(target error) bool { return target == ErrPipelineExecution }
