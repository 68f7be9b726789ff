// Package filter provides implementations for filter modules.
// This file parses "COL=VAL[,VAL2,...]" filter expressions into a Spec.
package filter

import (
	"strings"

	"github.com/olyfilter/olyfilter/internal/errhandling"
)

// MatchMode selects how an entry's values are compared with cell values.
type MatchMode int

const (
	// MatchExact keeps rows whose cell equals one of the values.
	MatchExact MatchMode = iota
	// MatchSubstring keeps rows whose cell text contains one of the values, ignoring case.
	MatchSubstring
)

// String returns the mode name.
func (m MatchMode) String() string {
	if m == MatchSubstring {
		return "substring"
	}
	return "exact"
}

// Entry is one column criterion of a Spec.
type Entry struct {
	Column string
	Values []string
	Mode   MatchMode
}

// Spec is an ordered mapping from column name to accepted values.
// Setting an existing column replaces its values but keeps its position.
type Spec struct {
	entries []Entry
	index   map[string]int
}

// NewSpec returns an empty Spec.
func NewSpec() *Spec {
	return &Spec{index: make(map[string]int)}
}

// Set assigns values to column.
func (s *Spec) Set(column string, values []string, mode MatchMode) {
	e := Entry{Column: column, Values: append([]string(nil), values...), Mode: mode}
	if i, ok := s.index[column]; ok {
		s.entries[i] = e
		return
	}
	s.index[column] = len(s.entries)
	s.entries = append(s.entries, e)
}

// SetMode applies mode to every entry.
func (s *Spec) SetMode(mode MatchMode) {
	for i := range s.entries {
		s.entries[i].Mode = mode
	}
}

// Get returns the values for column.
func (s *Spec) Get(column string) ([]string, bool) {
	i, ok := s.index[column]
	if !ok {
		return nil, false
	}
	return append([]string(nil), s.entries[i].Values...), true
}

// Entries returns the entries in order.
func (s *Spec) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of columns.
func (s *Spec) Len() int {
	return len(s.entries)
}

// ParseExpressions parses filter expressions into a Spec whose entries use
// MatchExact. It stops at the first malformed expression.
func ParseExpressions(exprs []string) (*Spec, error) {
	spec := NewSpec()
	for _, expr := range exprs {
		column, values, err := ParseExpression(expr)
		if err != nil {
			return nil, err
		}
		spec.Set(column, values, MatchExact)
	}
	return spec, nil
}

// ParseExpression parses one "KEY=VAL[,VAL2,...]" expression. The key and
// each value are trimmed; empty values are dropped. Values may contain '='.
func ParseExpression(expr string) (string, []string, error) {
	key, raw, found := strings.Cut(expr, "=")
	if !found {
		return "", nil, errhandling.NewMalformedFilterError(expr)
	}

	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return "", nil, errhandling.NewEmptyFilterValuesError(expr)
	}
	return strings.TrimSpace(key), values, nil
}
