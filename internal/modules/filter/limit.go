// Package filter provides implementations for filter modules.
// This file implements row truncation.
package filter

import (
	"context"

	"github.com/olyfilter/olyfilter/pkg/table"
)

// ModuleTypeLimit is the module type used in logs.
const ModuleTypeLimit = "limit"

// LimitModule keeps the first n rows. A limit of zero or less keeps every
// row: zero doubles as "no limit".
type LimitModule struct {
	limit int
}

// NewLimit creates a truncation module.
func NewLimit(limit int) *LimitModule {
	return &LimitModule{limit: limit}
}

// Type implements Module.
func (m *LimitModule) Type() string { return ModuleTypeLimit }

// Process implements the filter.Module interface.
func (m *LimitModule) Process(_ context.Context, tbl *table.Table) (*table.Table, error) {
	if m.limit <= 0 {
		return tbl, nil
	}
	return tbl.Head(m.limit), nil
}

// Verify LimitModule implements Module
var _ Module = (*LimitModule)(nil)
