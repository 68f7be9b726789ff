// Package runtime provides the pipeline execution engine.
package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/internal/modules/filter"
	"github.com/olyfilter/olyfilter/internal/modules/input"
	"github.com/olyfilter/olyfilter/internal/modules/output"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// =============================================================================
// Mock Implementations for Testing
// =============================================================================

// MockInputModule is a test mock for input.Module interface
type MockInputModule struct {
	tbl         *table.Table
	err         error
	fetchCalled bool
	closed      bool
}

func NewMockInputModule(tbl *table.Table, err error) *MockInputModule {
	return &MockInputModule{tbl: tbl, err: err}
}

func (m *MockInputModule) Fetch(_ context.Context) (*table.Table, error) {
	m.fetchCalled = true
	if m.err != nil {
		return nil, m.err
	}
	return m.tbl, nil
}

func (m *MockInputModule) Close() error {
	m.closed = true
	return nil
}

// Verify MockInputModule implements input.Module
var _ input.Module = (*MockInputModule)(nil)

// MockFilterModule is a test mock for filter.Module interface
type MockFilterModule struct {
	transform     func(*table.Table) *table.Table
	err           error
	processCalled bool
}

func (m *MockFilterModule) Process(_ context.Context, tbl *table.Table) (*table.Table, error) {
	m.processCalled = true
	if m.err != nil {
		return nil, m.err
	}
	if m.transform != nil {
		return m.transform(tbl), nil
	}
	return tbl, nil
}

func (m *MockFilterModule) Type() string { return "mock" }

// Verify MockFilterModule implements filter.Module
var _ filter.Module = (*MockFilterModule)(nil)

// MockOutputModule is a test mock for output.Module interface
type MockOutputModule struct {
	sent       *table.Table
	err        error
	sendCalled bool
	closed     bool
}

func (m *MockOutputModule) Send(_ context.Context, tbl *table.Table) (int, error) {
	m.sendCalled = true
	if m.err != nil {
		return 0, m.err
	}
	m.sent = tbl
	return tbl.Len(), nil
}

func (m *MockOutputModule) Close() error {
	m.closed = true
	return nil
}

// Verify MockOutputModule implements output.Module
var _ output.Module = (*MockOutputModule)(nil)

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.FromRecords(
		[]string{"Sport", "Medal", "Year"},
		[][]string{
			{"Swimming", "Gold", "2008"},
			{"Swimming", "NA", "2012"},
			{"Judo", "Bronze", "2000"},
		},
	)
	if err != nil {
		t.Fatalf("FromRecords() error = %v", err)
	}
	return tbl
}

// =============================================================================
// Unit Tests for Pipeline Execution
// =============================================================================

func TestExecutor_Execute_Success(t *testing.T) {
	in := NewMockInputModule(sampleTable(t), nil)
	swimming := &MockFilterModule{transform: func(tbl *table.Table) *table.Table {
		return tbl.Filter(func(r table.Row) bool { return r.Get("Sport").Text() == "Swimming" })
	}}
	out := &MockOutputModule{}

	e := NewExecutorWithModules(in, []filter.Module{swimming}, out)
	result, err := e.Execute(context.Background())

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", result.Status, StatusSuccess)
	}
	if result.RowsRead != 3 || result.RowsWritten != 2 {
		t.Errorf("RowsRead/RowsWritten = %d/%d, want 3/2", result.RowsRead, result.RowsWritten)
	}
	if result.Error != nil {
		t.Errorf("Error = %+v, want nil", result.Error)
	}
	if result.CompletedAt.Before(result.StartedAt) {
		t.Error("CompletedAt before StartedAt")
	}
	if !in.closed || !out.closed {
		t.Error("modules were not closed")
	}
	if out.sent.Len() != 2 {
		t.Errorf("output received %d rows, want 2", out.sent.Len())
	}
}

func TestExecutor_RunIDIsUUID(t *testing.T) {
	e := NewExecutorWithModules(NewMockInputModule(sampleTable(t), nil), nil, &MockOutputModule{})
	if _, err := uuid.Parse(e.RunID()); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", e.RunID(), err)
	}
	other := NewExecutorWithModules(NewMockInputModule(sampleTable(t), nil), nil, &MockOutputModule{})
	if e.RunID() == other.RunID() {
		t.Error("run ids must differ between executors")
	}

	result, _ := e.Execute(context.Background())
	if result.RunID != e.RunID() {
		t.Errorf("result RunID = %q, want %q", result.RunID, e.RunID())
	}
}

func TestExecutor_FiltersRunInOrder(t *testing.T) {
	var order []string
	mk := func(name string) *MockFilterModule {
		return &MockFilterModule{transform: func(tbl *table.Table) *table.Table {
			order = append(order, name)
			return tbl
		}}
	}
	e := NewExecutorWithModules(
		NewMockInputModule(sampleTable(t), nil),
		[]filter.Module{mk("a"), nil, mk("b"), mk("c")},
		&MockOutputModule{},
	)
	if _, err := e.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("filter order = %v", order)
	}
}

func TestExecutor_InputError(t *testing.T) {
	inputErr := errhandling.NewNotFoundError("missing.csv", nil)
	in := NewMockInputModule(nil, inputErr)
	f := &MockFilterModule{}
	out := &MockOutputModule{}

	result, err := NewExecutorWithModules(in, []filter.Module{f}, out).Execute(context.Background())

	if err != inputErr {
		t.Fatalf("Execute() err = %v, want the input error unchanged", err)
	}
	if result.Status != StatusError {
		t.Errorf("Status = %q", result.Status)
	}
	if result.Error == nil || result.Error.Code != ErrCodeInputFailed || result.Error.Category != errhandling.CategoryNotFound {
		t.Errorf("Error = %+v", result.Error)
	}
	if f.processCalled || out.sendCalled {
		t.Error("later stages must not run after an input failure")
	}
	if !in.closed || !out.closed {
		t.Error("modules must be closed after a failure")
	}
}

func TestExecutor_FilterError(t *testing.T) {
	filterErr := errhandling.NewUnknownFilterColumnError("Foo")
	first := &MockFilterModule{}
	failing := &MockFilterModule{err: filterErr}
	after := &MockFilterModule{}
	out := &MockOutputModule{}

	result, err := NewExecutorWithModules(
		NewMockInputModule(sampleTable(t), nil),
		[]filter.Module{first, failing, after},
		out,
	).Execute(context.Background())

	if !errors.Is(err, errhandling.ErrUnknownColumn) {
		t.Fatalf("Execute() err = %v", err)
	}
	if err.Error() != "unknown filter column: Foo" {
		t.Errorf("error message changed: %q", err.Error())
	}
	if result.Error.Code != ErrCodeFilterFailed || result.Error.FilterIndex != 1 {
		t.Errorf("Error = %+v", result.Error)
	}
	if after.processCalled || out.sendCalled {
		t.Error("stages after a failing filter must not run")
	}
	if result.RowsWritten != 0 {
		t.Errorf("RowsWritten = %d", result.RowsWritten)
	}
}

func TestExecutor_OutputError(t *testing.T) {
	outErr := errhandling.NewIOError("cannot write out.csv", errors.New("disk full"))
	out := &MockOutputModule{err: outErr}

	result, err := NewExecutorWithModules(NewMockInputModule(sampleTable(t), nil), nil, out).Execute(context.Background())

	if err != outErr {
		t.Fatalf("Execute() err = %v", err)
	}
	if got := errhandling.ExitCode(err); got != errhandling.ExitRuntimeError {
		t.Errorf("ExitCode = %d", got)
	}
	if result.Error.Code != ErrCodeOutputFailed || result.Error.Module != "output" {
		t.Errorf("Error = %+v", result.Error)
	}
	if !out.closed {
		t.Error("output module must be closed")
	}
}

func TestExecutor_NilModules(t *testing.T) {
	tests := []struct {
		name    string
		in      input.Module
		out     output.Module
		wantErr error
	}{
		{"nil input", nil, &MockOutputModule{}, ErrNilInputModule},
		{"nil output", NewMockInputModule(nil, nil), nil, ErrNilOutputModule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewExecutorWithModules(tt.in, nil, tt.out).Execute(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if result == nil || result.Error.Code != ErrCodeInvalidInput {
				t.Errorf("result = %+v", result)
			}
		})
	}
}

func TestExecutor_LogsCarryRunID(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevelAndFormat(slog.LevelDebug, logger.FormatJSON)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetLevelAndFormat(logger.DefaultLevel, logger.FormatHuman)
	})

	e := NewExecutorWithModules(NewMockInputModule(sampleTable(t), nil), []filter.Module{&MockFilterModule{}}, &MockOutputModule{})
	if _, err := e.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	stages := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		if entry["run_id"] != e.RunID() {
			t.Errorf("log line without run id: %s", line)
		}
		if s, ok := entry["stage"].(string); ok {
			stages[s] = true
		}
	}
	for _, s := range []string{"input", "filter", "output"} {
		if !stages[s] {
			t.Errorf("no log line for stage %q", s)
		}
	}
}
