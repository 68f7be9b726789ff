// Package filter provides implementations for filter modules.
// This file implements the "match" filter: a conjunction of per-column
// criteria, each an OR over its values.
package filter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/internal/logger"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// ModuleTypeMatch is the module type used in logs.
const ModuleTypeMatch = "match"

// MatchModule keeps rows that satisfy every entry of a Spec.
//
// Entries are applied one after another in Spec order, each narrowing the
// rows left by the previous one, so the first entry naming an unknown column
// is the one reported.
type MatchModule struct {
	spec *Spec
}

// NewMatch creates a match filter module. A nil or empty spec passes rows through.
func NewMatch(spec *Spec) *MatchModule {
	if spec == nil {
		spec = NewSpec()
	}
	return &MatchModule{spec: spec}
}

// Type implements Module.
func (m *MatchModule) Type() string { return ModuleTypeMatch }

// Process implements the filter.Module interface.
func (m *MatchModule) Process(ctx context.Context, tbl *table.Table) (*table.Table, error) {
	current := tbl
	for _, entry := range m.spec.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !current.HasColumn(entry.Column) {
			return nil, errhandling.NewUnknownFilterColumnError(entry.Column)
		}

		before := current.Len()
		current = current.Filter(entryPredicate(entry))

		logger.Debug("filter entry applied",
			slog.String("column", entry.Column),
			slog.Any("values", entry.Values),
			slog.String("mode", entry.Mode.String()),
			slog.Int("rows_before", before),
			slog.Int("rows_after", current.Len()),
		)
	}
	return current, nil
}

func entryPredicate(e Entry) func(table.Row) bool {
	if e.Mode == MatchSubstring {
		needles := make([]string, len(e.Values))
		for i, v := range e.Values {
			needles[i] = strings.ToLower(v)
		}
		return func(r table.Row) bool {
			return containsAny(r.Get(e.Column), needles)
		}
	}

	accepted := make([]table.Value, len(e.Values))
	for i, v := range e.Values {
		accepted[i] = table.String(v)
	}
	return func(r table.Row) bool {
		return isIn(r.Get(e.Column), accepted)
	}
}

// isIn is a membership test on native values: numeric cells never equal a
// filter string, and missing cells match nothing.
func isIn(cell table.Value, accepted []table.Value) bool {
	for _, a := range accepted {
		if cell.Equal(a) {
			return true
		}
	}
	return false
}

// containsAny reports whether the lower-cased cell text contains any needle.
// needles must already be lower-cased. Missing cells match nothing.
func containsAny(cell table.Value, needles []string) bool {
	if cell.IsMissing() {
		return false
	}
	text := strings.ToLower(cell.Text())
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// Verify MatchModule implements Module
var _ Module = (*MatchModule)(nil)
