// Package runtime provides the pipeline execution engine.
// This file defines the outcome of a run.
package runtime

import (
	"time"

	"github.com/olyfilter/olyfilter/internal/errhandling"
)

// Error codes for pipeline execution errors
const (
	ErrCodeInputFailed  = "INPUT_FAILED"
	ErrCodeFilterFailed = "FILTER_FAILED"
	ErrCodeOutputFailed = "OUTPUT_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
)

// Execution status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// StageTimings holds the time spent in each stage.
type StageTimings struct {
	Input  time.Duration
	Filter time.Duration
	Output time.Duration
}

// ExecutionError describes the stage failure that ended a run.
type ExecutionError struct {
	// Code is one of the ErrCode* constants.
	Code string
	// Category is the errhandling category of the underlying error.
	Category errhandling.ErrorCategory
	// Module is the stage that failed: input, filter or output.
	Module string
	// FilterIndex is the position of the failing filter, -1 otherwise.
	FilterIndex int
	Message     string
}

// ExecutionResult is the outcome of one Execute call.
type ExecutionResult struct {
	RunID       string
	Status      string
	RowsRead    int
	RowsWritten int
	StartedAt   time.Time
	CompletedAt time.Time
	Timings     StageTimings
	Error       *ExecutionError
}

// Duration returns the wall time of the run.
func (r *ExecutionResult) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

func newExecutionError(code, module string, filterIndex int, err error) *ExecutionError {
	return &ExecutionError{
		Code:        code,
		Category:    errhandling.GetErrorCategory(err),
		Module:      module,
		FilterIndex: filterIndex,
		Message:     err.Error(),
	}
}
