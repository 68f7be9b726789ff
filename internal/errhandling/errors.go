// Package errhandling provides error types, classification, and exit code
// mapping for olyfilter.
//
// Every user-visible failure is a ClassifiedError carrying an ErrorCategory.
// Components return these errors up the call chain; only the CLI entry point
// prints them and terminates the process with the code from ExitCode.
package errhandling

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryNotFound represents a missing input file.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryUnknownColumn represents a requested or filtered column absent from the table.
	CategoryUnknownColumn ErrorCategory = "unknown_column"

	// CategoryMalformedFilter represents a filter expression without '='.
	CategoryMalformedFilter ErrorCategory = "malformed_filter"

	// CategoryEmptyFilterValues represents a filter expression with no values after trimming.
	CategoryEmptyFilterValues ErrorCategory = "empty_filter_values"

	// CategoryInvalidExpression represents a --where expression that fails to compile or evaluate.
	CategoryInvalidExpression ErrorCategory = "invalid_expression"

	// CategoryInvalidData represents an input file that is not well-formed delimited text.
	CategoryInvalidData ErrorCategory = "invalid_data"

	// CategoryUsage represents an invalid combination or value of command-line flags.
	CategoryUsage ErrorCategory = "usage"

	// CategoryConfig represents a profile file that cannot be parsed or fails validation.
	CategoryConfig ErrorCategory = "config"

	// CategoryIO represents an I/O failure while reading or writing files.
	CategoryIO ErrorCategory = "io"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// Sentinel errors, one per category, so callers can use errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrMalformedFilter   = errors.New("malformed filter")
	ErrEmptyFilterValues = errors.New("empty filter values")
	ErrInvalidExpression = errors.New("invalid expression")
	ErrInvalidData       = errors.New("invalid data")
	ErrUsage             = errors.New("usage error")
	ErrConfig            = errors.New("invalid configuration")
	ErrIO                = errors.New("i/o error")
)

var sentinels = map[ErrorCategory]error{
	CategoryNotFound:          ErrNotFound,
	CategoryUnknownColumn:     ErrUnknownColumn,
	CategoryMalformedFilter:   ErrMalformedFilter,
	CategoryEmptyFilterValues: ErrEmptyFilterValues,
	CategoryInvalidExpression: ErrInvalidExpression,
	CategoryInvalidData:       ErrInvalidData,
	CategoryUsage:             ErrUsage,
	CategoryConfig:            ErrConfig,
	CategoryIO:                ErrIO,
}

// Exit codes returned by the CLI.
const (
	ExitSuccess      = 0
	ExitInputError   = 1
	ExitConfigError  = 2
	ExitRuntimeError = 3
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Message is the diagnostic shown to the user.
	Message string

	// Subject is the offending input: a path, column name or filter expression.
	Subject string

	// OriginalErr is the underlying error, if any.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.OriginalErr != nil && e.Category == CategoryIO {
		return fmt.Sprintf("%s: %v", e.Message, e.OriginalErr)
	}
	return e.Message
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// Is matches the sentinel error of the category.
func (e *ClassifiedError) Is(target error) bool {
	s, ok := sentinels[e.Category]
	return ok && s == target
}

// NewNotFoundError reports a missing input file.
func NewNotFoundError(path string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryNotFound,
		Message:     fmt.Sprintf("file not found: %s", path),
		Subject:     path,
		OriginalErr: originalErr,
	}
}

// NewUnknownColumnError reports a column the table does not have.
func NewUnknownColumnError(column string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryUnknownColumn,
		Message:  fmt.Sprintf("unknown column: %s", column),
		Subject:  column,
	}
}

// NewUnknownFilterColumnError reports a filter naming a column the table does not have.
func NewUnknownFilterColumnError(column string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryUnknownColumn,
		Message:  fmt.Sprintf("unknown filter column: %s", column),
		Subject:  column,
	}
}

// NewMalformedFilterError reports a filter expression without '='.
func NewMalformedFilterError(expr string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryMalformedFilter,
		Message:  fmt.Sprintf("invalid filter expression (missing '='): %s", expr),
		Subject:  expr,
	}
}

// NewEmptyFilterValuesError reports a filter expression without values.
func NewEmptyFilterValuesError(expr string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryEmptyFilterValues,
		Message:  fmt.Sprintf("no values for filter: %s", expr),
		Subject:  expr,
	}
}

// NewInvalidExpressionError reports a --where expression failure.
func NewInvalidExpressionError(expr string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryInvalidExpression,
		Message:     fmt.Sprintf("invalid expression %q: %v", expr, originalErr),
		Subject:     expr,
		OriginalErr: originalErr,
	}
}

// NewInvalidDataError reports an unreadable data file.
func NewInvalidDataError(path string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryInvalidData,
		Message:     fmt.Sprintf("cannot parse %s: %v", path, originalErr),
		Subject:     path,
		OriginalErr: originalErr,
	}
}

// NewUsageError reports an invalid command-line value.
func NewUsageError(message string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryUsage,
		Message:  message,
	}
}

// NewConfigError reports a profile file problem.
func NewConfigError(path, message string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryConfig,
		Message:  message,
		Subject:  path,
	}
}

// NewIOError reports a read or write failure.
func NewIOError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryIO,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// ClassifyFileError turns an error from opening path into a ClassifiedError.
// Missing files become CategoryNotFound, everything else CategoryIO.
func ClassifyFileError(path string, err error) *ClassifiedError {
	if err == nil {
		return nil
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}
	if errors.Is(err, fs.ErrNotExist) {
		return NewNotFoundError(path, err)
	}
	return NewIOError(fmt.Sprintf("cannot open %s", path), err)
}

// GetErrorCategory returns the error category for a given error.
// Returns CategoryUnknown for nil or unclassified errors.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}
	return CategoryUnknown
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch GetErrorCategory(err) {
	case CategoryNotFound, CategoryUnknownColumn, CategoryMalformedFilter,
		CategoryEmptyFilterValues, CategoryInvalidExpression, CategoryInvalidData, CategoryUsage:
		return ExitInputError
	case CategoryConfig:
		return ExitConfigError
	default:
		return ExitRuntimeError
	}
}
