// Package output provides implementations for output modules.
// This file implements the plain-text table renderer.
package output

import (
	"bufio"
	"context"
	"io"
	"strings"

	"golang.org/x/text/width"

	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// ModuleTypeConsole is the module type used in logs.
const ModuleTypeConsole = "console"

// MissingText is how missing cells are shown on the console.
const MissingText = "NaN"

// ConsoleModule renders a table as right-aligned text columns, one header
// line followed by one line per row, with no index column.
type ConsoleModule struct {
	w io.Writer
}

// NewConsole creates a console output module writing to w.
func NewConsole(w io.Writer) *ConsoleModule {
	return &ConsoleModule{w: w}
}

// Send implements the output.Module interface.
func (m *ConsoleModule) Send(ctx context.Context, tbl *table.Table) (int, error) {
	bw := bufio.NewWriter(m.w)

	columns := tbl.Columns()
	if tbl.Len() == 0 || len(columns) == 0 {
		bw.WriteString("Empty table\n")
		bw.WriteString("Columns: [" + strings.Join(columns, ", ") + "]\n")
		if err := bw.Flush(); err != nil {
			return 0, errhandling.NewIOError("cannot write output", err)
		}
		return 0, nil
	}

	cells := make([][]string, tbl.Len())
	widths := make([]int, len(columns))
	for c, name := range columns {
		widths[c] = displayWidth(name)
	}
	for i := range cells {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		row := tbl.Row(i).Values()
		line := make([]string, len(row))
		for c, v := range row {
			line[c] = cellText(v)
			if w := displayWidth(line[c]); w > widths[c] {
				widths[c] = w
			}
		}
		cells[i] = line
	}

	writeLine(bw, columns, widths)
	for _, line := range cells {
		writeLine(bw, line, widths)
	}
	if err := bw.Flush(); err != nil {
		return 0, errhandling.NewIOError("cannot write output", err)
	}
	return tbl.Len(), nil
}

// Close implements the output.Module interface.
func (m *ConsoleModule) Close() error {
	return nil
}

func cellText(v table.Value) string {
	if v.IsMissing() {
		return MissingText
	}
	return v.Text()
}

func writeLine(w *bufio.Writer, fields []string, widths []int) {
	for c, f := range fields {
		if c > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(strings.Repeat(" ", widths[c]-displayWidth(f)))
		w.WriteString(f)
	}
	w.WriteByte('\n')
}

// displayWidth counts terminal cells: wide and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// Verify ConsoleModule implements Module
var _ Module = (*ConsoleModule)(nil)
