// Package input provides implementations for input modules.
// CSVFileModule reads a comma-delimited file with a header row, optionally
// gzip or zstd compressed, into a table.
package input

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/olyfilter/olyfilter/internal/compression"
	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// ModuleTypeCSVFile is the module type used in logs.
const ModuleTypeCSVFile = "csvFile"

// DefaultPath is the dataset read when no path is configured.
const DefaultPath = "olympics_dataset.csv"

// ctxCheckInterval is how many records are read between context checks.
const ctxCheckInterval = 1000

const utf8BOM = "\ufeff"

// CSVFileModule loads a delimited file into a table.
type CSVFileModule struct {
	path  string
	comma rune
}

// NewCSVFile creates a CSV file input module. An empty path reads DefaultPath.
func NewCSVFile(path string) *CSVFileModule {
	if path == "" {
		path = DefaultPath
	}
	return &CSVFileModule{path: path, comma: ','}
}

// Path returns the file the module reads.
func (m *CSVFileModule) Path() string {
	return m.path
}

// Fetch reads the whole file. A missing file is reported as a NotFound error;
// malformed content as InvalidData.
func (m *CSVFileModule) Fetch(ctx context.Context) (*table.Table, error) {
	rc, err := compression.Open(m.path)
	if err != nil {
		return nil, errhandling.ClassifyFileError(m.path, err)
	}
	defer rc.Close()

	logger.Debug("reading dataset",
		slog.String("path", m.path),
		slog.String("codec", string(compression.Detect(m.path))),
	)

	tbl, err := m.read(ctx, rc)
	if err != nil {
		return nil, err
	}

	logger.Debug("dataset loaded",
		slog.String("path", m.path),
		slog.Int("columns", len(tbl.Columns())),
		slog.Int("rows", tbl.Len()),
	)
	return tbl, nil
}

func (m *CSVFileModule) read(ctx context.Context, r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = m.comma
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errhandling.NewInvalidDataError(m.path, errors.New("no header row"))
	}
	if err != nil {
		return nil, m.readError(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var records [][]string
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, m.readError(err)
		}
		records = append(records, rec)
	}

	tbl, err := table.FromRecords(header, records)
	if err != nil {
		return nil, errhandling.NewInvalidDataError(m.path, err)
	}
	return tbl, nil
}

func (m *CSVFileModule) readError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return errhandling.NewInvalidDataError(m.path, err)
	}
	return errhandling.NewIOError(fmt.Sprintf("reading %s", m.path), err)
}

// Close releases resources (no-op; the file is closed after Fetch).
func (m *CSVFileModule) Close() error {
	return nil
}

// Verify CSVFileModule implements Module
var _ Module = (*CSVFileModule)(nil)
