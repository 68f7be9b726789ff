// Package inspect answers schema questions about a loaded table: which
// columns it has and which distinct values a column holds.
package inspect

import (
	"log/slog"

	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// Columns returns the column names in table order.
func Columns(tbl *table.Table) []string {
	return tbl.Columns()
}

// Unique returns the distinct non-missing values of column in
// first-occurrence order. A positive limit truncates the result.
func Unique(tbl *table.Table, column string, limit int) ([]table.Value, error) {
	if !tbl.HasColumn(column) {
		return nil, errhandling.NewUnknownColumnError(column)
	}
	values, err := tbl.Distinct(column)
	if err != nil {
		return nil, errhandling.NewUnknownColumnError(column)
	}

	total := len(values)
	if limit > 0 && limit < total {
		values = values[:limit]
	}

	logger.Debug("distinct values computed",
		slog.String("column", column),
		slog.Int("distinct", total),
		slog.Int("returned", len(values)),
	)
	return values, nil
}
