// Package config provides functionality for parsing and validating
// olyfilter profile files (JSON/YAML) and environment settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ParseError types.
const (
	ErrorTypeIO     = "io"
	ErrorTypeSyntax = "syntax"
	ErrorTypeFormat = "format"
)

// ParseError is a profile that could not be read or decoded.
// Line and Column are 1-based, 0 when unknown.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Type    string
}

func (e ParseError) Error() string {
	loc := ""
	switch {
	case e.Line > 0 && e.Column > 0:
		loc = fmt.Sprintf("line %d, column %d: ", e.Line, e.Column)
	case e.Line > 0:
		loc = fmt.Sprintf("line %d: ", e.Line)
	}
	if e.Path != "" {
		return e.Path + ": " + loc + e.Message
	}
	return loc + e.Message
}

// Result holds a decoded profile and everything wrong with it. Validation
// only runs once decoding succeeded.
type Result struct {
	Path             string
	Format           string
	Data             map[string]interface{}
	ParseErrors      []ParseError
	ValidationErrors []ValidationError
}

// IsValid reports whether the profile decoded and validated cleanly.
func (r *Result) IsValid() bool {
	return len(r.ParseErrors) == 0 && len(r.ValidationErrors) == 0
}

// Err joins all parse and validation errors, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, e := range r.ParseErrors {
		errs = append(errs, e)
	}
	for _, e := range r.ValidationErrors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// ParseProfile parses and validates a profile file.
// It detects the format from the file extension, falling back to the content.
func ParseProfile(filepath string) *Result {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return &Result{Path: filepath, ParseErrors: []ParseError{{
			Path:    filepath,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		}}}
	}

	result := ParseProfileString(string(content), DetectFormat(filepath))
	result.Path = filepath
	for i := range result.ParseErrors {
		if result.ParseErrors[i].Path == "" {
			result.ParseErrors[i].Path = filepath
		}
	}
	return result
}

// ParseProfileString parses and validates profile content from a string.
// If format is empty, it is detected from the content.
func ParseProfileString(content string, format string) *Result {
	result := &Result{Format: format}

	if format == "" {
		switch {
		case IsJSON(content):
			format = FormatJSON
		case IsYAML(content):
			format = FormatYAML
		default:
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Message: "unable to detect profile format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			})
			return result
		}
	}

	var (
		data map[string]interface{}
		perr *ParseError
	)
	switch format {
	case FormatJSON:
		data, perr = decodeJSON(content)
	case FormatYAML:
		data, perr = decodeYAML(content)
	default:
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Message: fmt.Sprintf("unsupported format: %s", format),
			Type:    ErrorTypeFormat,
		})
		return result
	}

	result.Format = format
	if perr != nil {
		result.ParseErrors = append(result.ParseErrors, *perr)
		return result
	}
	result.Data = data
	result.ValidationErrors = ValidateProfile(data)
	return result
}

// DetectFormat detects the profile format from the file extension.
// Returns "json", "yaml", or empty string if format cannot be detected.
func DetectFormat(filepath string) string {
	switch strings.ToLower(path.Ext(filepath)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// IsJSON checks if the content appears to be a JSON object.
func IsJSON(content string) bool {
	return strings.HasPrefix(strings.TrimSpace(content), "{")
}

// IsYAML checks if the content parses as a non-empty YAML document.
// JSON is also valid YAML, so this returns true for JSON content as well.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	err := yaml.Unmarshal([]byte(content), &data)
	return err == nil && data != nil
}

func decodeJSON(content string) (map[string]interface{}, *ParseError) {
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Message: "empty content: expected JSON object", Type: ErrorTypeSyntax}
	}
	var data interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		perr := parseJSONError(err, content)
		return nil, &perr
	}
	return toMapping(data, "JSON object")
}

// decodeYAML treats a document holding only comments as an empty profile.
func decodeYAML(content string) (map[string]interface{}, *ParseError) {
	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		perr := parseYAMLError(err)
		return nil, &perr
	}
	return toMapping(data, "YAML mapping")
}

func toMapping(data interface{}, want string) (map[string]interface{}, *ParseError) {
	if data == nil {
		return map[string]interface{}{}, nil
	}
	m, ok := data.(map[string]interface{})
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid profile: expected %s, got %T", want, data),
			Type:    ErrorTypeFormat,
		}
	}
	return m, nil
}

// parseJSONError extracts location information from a JSON decoding error.
func parseJSONError(err error, content string) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error: %s", syntaxErr.Error())
	}
	return parseErr
}

// offsetToLineColumn converts a byte offset to line and column numbers (1-based).
func offsetToLineColumn(content string, offset int64) (line, column int) {
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// parseYAMLError extracts location information from a YAML decoding error.
func parseYAMLError(err error) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}

	// yaml.v3 reports locations as "yaml: line N: ..."
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		parseErr.Line = line
	}
	return parseErr
}
