package table

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrRowWidth is returned when a row does not have one cell per column.
var ErrRowWidth = errors.New("row width does not match column count")

// Table is an immutable, column-typed, in-memory table.
type Table struct {
	columns []string
	index   map[string]int
	kinds   []Kind
	rows    [][]Value
}

// Row is a read-only view of one table row.
type Row struct {
	table *Table
	cells []Value
}

// New builds a table from column names and typed rows. Column kinds are
// taken from the first non-missing cell of each column.
func New(columns []string, rows [][]Value) (*Table, error) {
	t := newShell(columns)
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells for %d columns: %w", i, len(r), len(columns), ErrRowWidth)
		}
	}
	t.rows = rows
	for c := range t.columns {
		t.kinds[c] = KindString
		for _, r := range rows {
			if !r[c].IsMissing() {
				t.kinds[c] = r[c].Kind()
				break
			}
		}
	}
	return t, nil
}

// FromRecords builds a table from a header and raw text records, inferring
// one kind per column. Duplicate header names are disambiguated by suffixing
// ".1", ".2", ... to later occurrences.
func FromRecords(header []string, records [][]string) (*Table, error) {
	t := newShell(dedupeHeader(header))
	width := len(t.columns)

	for i, rec := range records {
		if len(rec) != width {
			return nil, fmt.Errorf("record %d has %d fields for %d columns: %w", i+1, len(rec), width, ErrRowWidth)
		}
	}

	column := make([]string, len(records))
	for c := 0; c < width; c++ {
		for i, rec := range records {
			column[i] = rec[c]
		}
		t.kinds[c] = inferKind(column)
	}

	t.rows = make([][]Value, len(records))
	for i, rec := range records {
		row := make([]Value, width)
		for c, raw := range rec {
			row[c] = parseAs(raw, t.kinds[c])
		}
		t.rows[i] = row
	}
	return t, nil
}

func newShell(columns []string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		kinds:   make([]Kind, len(columns)),
	}
	for i, c := range t.columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	return t
}

func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, name := range header {
		candidate := name
		for n := 1; taken[candidate]; n++ {
			candidate = name + "." + strconv.Itoa(n)
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the table has the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnKind returns the kind inferred for the named column.
func (t *Table) ColumnKind(name string) (Kind, bool) {
	i, ok := t.index[name]
	if !ok {
		return KindMissing, false
	}
	return t.kinds[i], true
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row {
	return Row{table: t, cells: t.rows[i]}
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := t.derive(t.columns, t.kinds)
	out.rows = make([][]Value, 0, len(t.rows))
	for _, cells := range t.rows {
		if keep(Row{table: t, cells: cells}) {
			out.rows = append(out.rows, cells)
		}
	}
	return out
}

// Select returns a new table restricted to the given columns, in the given order.
func (t *Table) Select(columns []string) (*Table, error) {
	positions := make([]int, len(columns))
	kinds := make([]Kind, len(columns))
	for i, c := range columns {
		p, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", c)
		}
		positions[i] = p
		kinds[i] = t.kinds[p]
	}

	out := t.derive(columns, kinds)
	out.rows = make([][]Value, len(t.rows))
	for i, cells := range t.rows {
		row := make([]Value, len(positions))
		for j, p := range positions {
			row[j] = cells[p]
		}
		out.rows[i] = row
	}
	return out, nil
}

// Head returns a new table holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	out := t.derive(t.columns, t.kinds)
	out.rows = t.rows[:n:n]
	return out
}

// Distinct returns the distinct non-missing values of a column in
// first-occurrence order.
func (t *Table) Distinct(column string) ([]Value, error) {
	p, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	seen := make(map[valueKey]struct{})
	var values []Value
	for _, cells := range t.rows {
		v := cells[p]
		if v.IsMissing() {
			continue
		}
		k := v.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

// Records returns the rows as raw text, missing cells as empty strings.
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for i, cells := range t.rows {
		rec := make([]string, len(cells))
		for j, v := range cells {
			rec[j] = v.Text()
		}
		out[i] = rec
	}
	return out
}

func (t *Table) derive(columns []string, kinds []Kind) *Table {
	out := newShell(columns)
	copy(out.kinds, kinds)
	return out
}

// Get returns the cell of the named column. Unknown columns yield a missing value.
func (r Row) Get(column string) Value {
	p, ok := r.table.index[column]
	if !ok {
		return Missing()
	}
	return r.cells[p]
}

// Values returns a copy of the row cells in column order.
func (r Row) Values() []Value {
	return append([]Value(nil), r.cells...)
}

// Env returns the row as a column name to native value mapping.
func (r Row) Env() map[string]any {
	env := make(map[string]any, len(r.cells))
	for i, c := range r.table.columns {
		env[c] = r.cells[i].Native()
	}
	return env
}
