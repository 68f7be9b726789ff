// Package cli provides CLI output formatting and display functions.
package cli

import (
	"fmt"
	"io"

	"github.com/olyfilter/olyfilter/internal/runtime"
	"github.com/olyfilter/olyfilter/pkg/table"
)

// PrintColumns prints the column listing.
func PrintColumns(w io.Writer, columns []string) {
	fmt.Fprintln(w, "Available columns:")
	for _, c := range columns {
		fmt.Fprintf(w, " - %s\n", c)
	}
}

// PrintUnique prints the distinct values of a column.
func PrintUnique(w io.Writer, column string, values []table.Value) {
	fmt.Fprintf(w, "Unique values for '%s':\n", column)
	for _, v := range values {
		fmt.Fprintf(w, " - %s\n", v.Text())
	}
}

// PrintExported confirms a file export.
func PrintExported(w io.Writer, path string) {
	fmt.Fprintf(w, "Result exported to %s\n", path)
}

// PrintRunSummary prints the outcome of a pipeline run.
func PrintRunSummary(w io.Writer, result *runtime.ExecutionResult) {
	if result == nil {
		fmt.Fprintln(w, "✗ No execution result available")
		return
	}
	if result.Status != runtime.StatusSuccess {
		fmt.Fprintln(w, "✗ Run failed")
		if result.Error != nil {
			fmt.Fprintf(w, "  Stage: %s\n", result.Error.Module)
			if result.Error.FilterIndex >= 0 {
				fmt.Fprintf(w, "  Filter: %d\n", result.Error.FilterIndex)
			}
			fmt.Fprintf(w, "  Error: %s\n", result.Error.Message)
		}
		return
	}
	fmt.Fprintln(w, "✓ Run completed")
	fmt.Fprintf(w, "  Run: %s\n", result.RunID)
	fmt.Fprintf(w, "  Rows read: %d\n", result.RowsRead)
	fmt.Fprintf(w, "  Rows written: %d\n", result.RowsWritten)
	fmt.Fprintf(w, "  Duration: %v (input %v, filter %v, output %v)\n",
		result.Duration(), result.Timings.Input, result.Timings.Filter, result.Timings.Output)
}
