// Package output provides implementations for output modules.
// This file implements the delimited file writer.
package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"

	"github.com/olyfilter/olyfilter/internal/compression"
	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/internal/pathutil"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// ModuleTypeCSVFile is the module type used in logs.
const ModuleTypeCSVFile = "csvFile"

// CSVFileModule writes a table as comma-delimited text with a header row and
// no index column. Files named *.gz or *.zst are compressed accordingly.
//
// Cells are written with the text they were read from, missing cells as
// empty fields, so a written file loads back to the same table.
type CSVFileModule struct {
	path string
}

// NewCSVFile creates a CSV file output module. The path is validated here;
// parent directories are created on Send.
func NewCSVFile(path string) (*CSVFileModule, error) {
	if err := pathutil.ValidateFilePath(path); err != nil {
		return nil, errhandling.NewUsageError(fmt.Sprintf("invalid output path %q: %v", path, err))
	}
	return &CSVFileModule{path: path}, nil
}

// Path returns the destination path.
func (m *CSVFileModule) Path() string { return m.path }

// Send implements the output.Module interface.
func (m *CSVFileModule) Send(ctx context.Context, tbl *table.Table) (n int, err error) {
	log := logger.WithModule(ModuleTypeCSVFile)

	if err := pathutil.EnsureParentDir(m.path); err != nil {
		return 0, errhandling.NewIOError(fmt.Sprintf("cannot create directory for %s", m.path), err)
	}

	f, err := compression.Create(m.path)
	if err != nil {
		return 0, errhandling.NewIOError(fmt.Sprintf("cannot create %s", m.path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errhandling.NewIOError(fmt.Sprintf("cannot write %s", m.path), cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns()); err != nil {
		return 0, errhandling.NewIOError(fmt.Sprintf("cannot write %s", m.path), err)
	}

	for i, rec := range tbl.Records() {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		if err := w.Write(rec); err != nil {
			return n, errhandling.NewIOError(fmt.Sprintf("cannot write %s", m.path), err)
		}
		n++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return n, errhandling.NewIOError(fmt.Sprintf("cannot write %s", m.path), err)
	}

	log.Debug("table written",
		slog.String("path", m.path),
		slog.String("codec", string(compression.Detect(m.path))),
		slog.Int("rows", n),
	)
	return n, nil
}

// Close implements the output.Module interface. Send closes its file itself.
func (m *CSVFileModule) Close() error {
	return nil
}

// Verify CSVFileModule implements Module
var _ Module = (*CSVFileModule)(nil)
