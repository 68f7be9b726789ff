// Package filter provides implementations for filter modules.
// This file implements column projection onto a preferred column list.
package filter

import (
	"context"
	"log/slog"

	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// ModuleTypeSelect is the module type used in logs.
const ModuleTypeSelect = "select"

// DefaultColumns is the preferred display and export column list.
var DefaultColumns = []string{"Sport", "Event", "Medal", "Year", "NOC", "Team", "Sex"}

// SelectModule keeps the configured columns that the table actually has, in
// configured order. Absent columns are skipped silently.
type SelectModule struct {
	columns []string
}

// NewSelect creates a projection module. A nil list selects DefaultColumns.
func NewSelect(columns []string) *SelectModule {
	if columns == nil {
		columns = DefaultColumns
	}
	return &SelectModule{columns: append([]string(nil), columns...)}
}

// Type implements Module.
func (m *SelectModule) Type() string { return ModuleTypeSelect }

// Process implements the filter.Module interface.
func (m *SelectModule) Process(_ context.Context, tbl *table.Table) (*table.Table, error) {
	keep := make([]string, 0, len(m.columns))
	seen := make(map[string]bool, len(m.columns))
	for _, c := range m.columns {
		if tbl.HasColumn(c) && !seen[c] {
			seen[c] = true
			keep = append(keep, c)
			continue
		}
		if !tbl.HasColumn(c) {
			logger.Debug("projection column not in table; skipping", slog.String("column", c))
		}
	}
	return tbl.Select(keep)
}

// Verify SelectModule implements Module
var _ Module = (*SelectModule)(nil)
