// Package filter provides implementations for filter modules.
// Filter modules take a table and return a new table: row predicates,
// expression conditions, projection and truncation.
package filter

import (
	"context"

	"github.com/olyfilter/olyfilter/pkg/table"
)

// Module represents a filter module that transforms a table.
type Module interface {
	// Process returns the transformed table. The input table is not modified.
	Process(ctx context.Context, tbl *table.Table) (*table.Table, error)
	// Type returns the module type used in logs.
	Type() string
}

// ctxCheckInterval is how many rows are processed between context checks.
const ctxCheckInterval = 1000
