// Package output provides implementations for output modules.
// Output modules are responsible for delivering the final table: printing it
// to a terminal or writing it to a file.
package output

import (
	"context"

	"github.com/olyfilter/olyfilter/pkg/table"
)

// Module represents an output module that delivers a table to a destination.
type Module interface {
	// Send delivers the table. Returns the number of rows written and any error.
	Send(ctx context.Context, tbl *table.Table) (int, error)

	// Close releases any resources held by the module.
	Close() error
}

// ctxCheckInterval is how many rows are written between context checks.
const ctxCheckInterval = 1000
