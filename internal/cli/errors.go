package cli

import (
	"context"
	"errors"

	"github.com/vk/perfgrid/internal/catalog"
	"github.com/vk/perfgrid/internal/pipeline"
	"github.com/vk/perfgrid/internal/runner"
)

// Exit codes returned by the perfgrid binary.
const (
	ExitFailure         = 1
	ExitUsage           = 2
	ExitInvalidPipeline = 3
	ExitInterrupted     = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// FromError maps an application error to an ExitError. Runs stopped by a
// signal exit with ExitInterrupted and pipelines that cannot start with
// ExitInvalidPipeline. Node failures and everything else exit with
// ExitFailure.
func FromError(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	code := ExitFailure
	switch {
	case errors.Is(err, context.Canceled):
		code = ExitInterrupted
	case errors.Is(err, runner.ErrPipelineExecution):
		code = ExitFailure
	case errors.Is(err, pipeline.ErrCyclicPipeline),
		errors.Is(err, pipeline.ErrDuplicateNodeName),
		errors.Is(err, pipeline.ErrAmbiguousProducer),
		errors.Is(err, pipeline.ErrUnknownNode),
		errors.Is(err, pipeline.ErrUnknownDataset),
		errors.Is(err, catalog.ErrMissingDataset):
		code = ExitInvalidPipeline
	}
	return &ExitError{Code: code, Message: err.Error()}
}
