// Package config provides functionality for parsing and validating
// olyfilter profile files (JSON/YAML) and environment settings.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/profile-schema.json
var embeddedSchema []byte

const schemaURL = "https://olyfilter.dev/schemas/profile/v1/profile-schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaInitErr  error
)

// GetEmbeddedSchema returns the embedded profile schema.
func GetEmbeddedSchema() []byte {
	return embeddedSchema
}

// getCompiledSchema returns the compiled JSON schema, compiling it once.
func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(embeddedSchema))
		if err != nil {
			schemaInitErr = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, doc); err != nil {
			schemaInitErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		compiledSchema, err = compiler.Compile(schemaURL)
		if err != nil {
			schemaInitErr = fmt.Errorf("failed to compile schema: %w", err)
		}
	})
	return compiledSchema, schemaInitErr
}

// ValidationError is a profile value rejected by the schema. Path is a JSON
// pointer such as "/limit"; Type is a simplified keyword (type, range, ...).
type ValidationError struct {
	Path    string
	Type    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidateProfile validates parsed profile data against the profile schema.
// It returns nil for a valid profile.
func ValidateProfile(data map[string]interface{}) []ValidationError {
	fail := func(typ, msg string) []ValidationError {
		return []ValidationError{{Path: "/", Type: typ, Message: msg}}
	}

	if data == nil {
		return fail("required", "profile data is nil")
	}

	schema, err := getCompiledSchema()
	if err != nil {
		return fail("schema", fmt.Sprintf("failed to load schema: %v", err))
	}

	// YAML decodes numbers as Go ints; the validator wants JSON values.
	raw, err := json.Marshal(data)
	if err != nil {
		return fail("type", fmt.Sprintf("profile is not representable as JSON: %v", err))
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fail("type", err.Error())
	}

	verr := schema.Validate(instance)
	if verr == nil {
		return nil
	}
	var detailed *jsonschema.ValidationError
	if errors.As(verr, &detailed) {
		if errs := convertValidationErrors(detailed); len(errs) > 0 {
			return errs
		}
	}
	return fail("validation", verr.Error())
}

// convertValidationErrors flattens the jsonschema error tree into leaf errors.
func convertValidationErrors(err *jsonschema.ValidationError) []ValidationError {
	if len(err.Causes) == 0 {
		return []ValidationError{{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Type:    extractErrorType(err),
			Message: leafMessage(err),
		}}
	}
	var out []ValidationError
	for _, cause := range err.Causes {
		out = append(out, convertValidationErrors(cause)...)
	}
	return out
}

var printer = message.NewPrinter(language.English)

// leafMessage returns the keyword message without the location prefix.
func leafMessage(err *jsonschema.ValidationError) string {
	if err.ErrorKind != nil {
		return err.ErrorKind.LocalizedString(printer)
	}
	return err.Error()
}

// formatInstanceLocation formats the instance location as a JSON pointer.
func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

// extractErrorType extracts a simplified error type from the validation error.
func extractErrorType(err *jsonschema.ValidationError) string {
	msg := strings.ToLower(leafMessage(err))

	switch {
	case strings.Contains(msg, "additional properties"), strings.Contains(msg, "additionalproperties"):
		return "additionalProperties"
	case strings.Contains(msg, "required"):
		return "required"
	case strings.Contains(msg, "minimum"), strings.Contains(msg, "maximum"):
		return "range"
	case strings.Contains(msg, "pattern"), strings.Contains(msg, "does not match"):
		return "pattern"
	case strings.Contains(msg, "want"), strings.Contains(msg, "type"):
		return "type"
	case strings.Contains(msg, "enum"):
		return "enum"
	default:
		return "validation"
	}
}
