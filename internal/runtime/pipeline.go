// Package runtime provides the pipeline execution engine.
// It orchestrates the execution of Input, Filter, and Output modules.
package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/internal/modules/filter"
	"github.com/olyfilter/olyfilter/internal/modules/input"
	"github.com/olyfilter/olyfilter/internal/modules/output"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// Common errors
var (
	// ErrNilInputModule is returned when input module is nil
	ErrNilInputModule = errors.New("input module is nil")

	// ErrNilOutputModule is returned when output module is nil
	ErrNilOutputModule = errors.New("output module is nil")
)

// Executor runs one pipeline: Input → Filters → Output.
//
// The Executor only interacts with modules through their interfaces. Stage
// errors abort the run and are returned unchanged, so callers can classify
// them with errhandling.
type Executor struct {
	runID         string
	inputModule   input.Module
	filterModules []filter.Module
	outputModule  output.Module
}

// NewExecutorWithModules creates a pipeline executor with a fresh run id.
// filterModules may be empty; nil entries are skipped.
func NewExecutorWithModules(
	inputModule input.Module,
	filterModules []filter.Module,
	outputModule output.Module,
) *Executor {
	return &Executor{
		runID:         uuid.NewString(),
		inputModule:   inputModule,
		filterModules: filterModules,
		outputModule:  outputModule,
	}
}

// RunID returns the id attached to every log line of this executor.
func (e *Executor) RunID() string {
	return e.runID
}

// Execute runs the pipeline.
//
// Resource Management:
//   - Input module: closed as soon as the table is loaded, even on error.
//   - Output module: closed at the end of execution.
//
// Returns both result and error; the result is never nil.
func (e *Executor) Execute(ctx context.Context) (*ExecutionResult, error) {
	startedAt := time.Now()
	result := &ExecutionResult{
		RunID:     e.runID,
		Status:    StatusError,
		StartedAt: startedAt,
	}
	execCtx := logger.ExecutionContext{RunID: e.runID, FilterIndex: -1}

	if err := e.validate(result); err != nil {
		return result, err
	}

	logger.LogExecutionStart(execCtx, "pipeline")
	defer e.closeModule("output", e.outputModule)

	tbl, err := e.executeInput(ctx, result)
	if err != nil {
		e.finish(execCtx, result, startedAt)
		return result, err
	}

	tbl, err = e.executeFilters(ctx, tbl, result)
	if err != nil {
		e.finish(execCtx, result, startedAt)
		return result, err
	}

	if err := e.executeOutput(ctx, tbl, result); err != nil {
		e.finish(execCtx, result, startedAt)
		return result, err
	}

	result.Status = StatusSuccess
	e.finish(execCtx, result, startedAt)
	return result, nil
}

func (e *Executor) validate(result *ExecutionResult) error {
	var err error
	module := ""
	switch {
	case e.inputModule == nil:
		err, module = ErrNilInputModule, "input"
	case e.outputModule == nil:
		err, module = ErrNilOutputModule, "output"
	default:
		return nil
	}
	logger.Error("pipeline execution failed", slog.String("run_id", e.runID), slog.String("error", err.Error()))
	result.CompletedAt = time.Now()
	result.Error = newExecutionError(ErrCodeInvalidInput, module, -1, err)
	return err
}

func (e *Executor) finish(execCtx logger.ExecutionContext, result *ExecutionResult, startedAt time.Time) {
	result.CompletedAt = time.Now()
	logger.LogExecutionEnd(execCtx, result.Status, result.RowsWritten, time.Since(startedAt))
}

// moduleCloser interface for modules that can be closed.
type moduleCloser interface {
	Close() error
}

// closeModule closes a module and logs any error.
func (e *Executor) closeModule(moduleName string, m moduleCloser) {
	if m == nil {
		return
	}
	if err := m.Close(); err != nil {
		logger.Warn("failed to close module",
			slog.String("run_id", e.runID),
			slog.String("module", moduleName),
			slog.String("error", err.Error()),
		)
	}
}

func (e *Executor) executeInput(ctx context.Context, result *ExecutionResult) (*table.Table, error) {
	stageCtx := logger.ExecutionContext{RunID: e.runID, Stage: "input", FilterIndex: -1}
	logger.LogStageStart(stageCtx, 0)

	start := time.Now()
	tbl, err := e.inputModule.Fetch(ctx)
	result.Timings.Input = time.Since(start)
	e.closeModule("input", e.inputModule)

	if err != nil {
		result.Error = newExecutionError(ErrCodeInputFailed, "input", -1, err)
		logger.LogStageEnd(stageCtx, 0, result.Timings.Input, string(errhandling.GetErrorCategory(err)), err)
		return nil, err
	}

	result.RowsRead = tbl.Len()
	logger.LogStageEnd(stageCtx, tbl.Len(), result.Timings.Input, "", nil)
	return tbl, nil
}

func (e *Executor) executeFilters(ctx context.Context, tbl *table.Table, result *ExecutionResult) (*table.Table, error) {
	start := time.Now()
	defer func() { result.Timings.Filter = time.Since(start) }()

	current := tbl
	for i, m := range e.filterModules {
		if m == nil {
			logger.Warn("nil filter module encountered; skipping",
				slog.String("run_id", e.runID),
				slog.Int("filter_index", i),
			)
			continue
		}

		stageCtx := logger.ExecutionContext{RunID: e.runID, Stage: "filter", ModuleType: m.Type(), FilterIndex: i}
		logger.LogStageStart(stageCtx, current.Len())

		moduleStart := time.Now()
		next, err := m.Process(ctx, current)
		elapsed := time.Since(moduleStart)

		if err != nil {
			result.Error = newExecutionError(ErrCodeFilterFailed, "filter", i, err)
			logger.LogStageEnd(stageCtx, current.Len(), elapsed, string(errhandling.GetErrorCategory(err)), err)
			return nil, err
		}
		logger.LogStageEnd(stageCtx, next.Len(), elapsed, "", nil)
		current = next
	}
	return current, nil
}

func (e *Executor) executeOutput(ctx context.Context, tbl *table.Table, result *ExecutionResult) error {
	stageCtx := logger.ExecutionContext{RunID: e.runID, Stage: "output", FilterIndex: -1}
	logger.LogStageStart(stageCtx, tbl.Len())

	start := time.Now()
	written, err := e.outputModule.Send(ctx, tbl)
	result.Timings.Output = time.Since(start)
	result.RowsWritten = written

	if err != nil {
		result.Error = newExecutionError(ErrCodeOutputFailed, "output", -1, err)
		logger.LogStageEnd(stageCtx, written, result.Timings.Output, string(errhandling.GetErrorCategory(err)), err)
		return err
	}
	logger.LogStageEnd(stageCtx, written, result.Timings.Output, "", nil)
	return nil
}
