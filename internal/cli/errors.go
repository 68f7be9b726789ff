// Package cli provides CLI output formatting and display functions.
package cli

import (
	"fmt"
	"io"

	"github.com/olyfilter/olyfilter/internal/config"
)

// PrintError prints a one-line diagnostic.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "✗ %v\n", err)
}

// PrintParseErrors prints profile parse errors.
func PrintParseErrors(w io.Writer, errors []config.ParseError, verbose bool) {
	fmt.Fprintln(w, "✗ Profile parse errors:")
	for _, err := range errors {
		location := formatErrorLocation(err.Path, err.Line, err.Column)
		if location != "" {
			fmt.Fprintf(w, "  %s: %s\n", location, err.Message)
		} else {
			fmt.Fprintf(w, "  %s\n", err.Message)
		}
		if verbose && err.Type != "" {
			fmt.Fprintf(w, "    Type: %s\n", err.Type)
		}
	}
}

// formatErrorLocation formats the error location string (path:line:column).
func formatErrorLocation(path string, line, column int) string {
	if path == "" {
		return ""
	}
	location := path
	if line > 0 {
		location += fmt.Sprintf(":%d", line)
		if column > 0 {
			location += fmt.Sprintf(":%d", column)
		}
	}
	return location
}

// PrintValidationErrors prints profile schema violations.
func PrintValidationErrors(w io.Writer, path string, errors []config.ValidationError, verbose, quiet bool) {
	fmt.Fprintf(w, "✗ Profile validation errors (%s):\n", path)
	for _, err := range errors {
		p := err.Path
		if p == "" {
			p = "/"
		}
		if verbose {
			fmt.Fprintf(w, "  %s:\n", p)
			fmt.Fprintf(w, "    Message: %s\n", err.Message)
			if err.Type != "" {
				fmt.Fprintf(w, "    Type: %s\n", err.Type)
			}
			continue
		}
		fmt.Fprintf(w, "  %s: %s\n", p, truncate(err.Message, 80))
	}
	if !quiet && !verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Hint: Use --verbose for detailed error information")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
