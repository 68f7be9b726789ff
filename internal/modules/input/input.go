// Package input provides implementations for input modules.
// Input modules load the dataset that the rest of the run operates on.
package input

import (
	"context"

	"github.com/olyfilter/olyfilter/pkg/table"
)

// Module represents an input module that loads a table from a source.
type Module interface {
	// Fetch loads the table. The context can be used to cancel long reads.
	Fetch(ctx context.Context) (*table.Table, error)
	// Close releases any resources held by the module.
	Close() error
}
