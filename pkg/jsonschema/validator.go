package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, err := range ve {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// SchemaError reports a schema that could not be compiled
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Compile compiles a schema given as JSON text, raw bytes or an already
// decoded value such as a map read from a YAML test case.
func Compile(schema any) (*jsonschema.Schema, error) {
	var raw []byte
	switch s := schema.(type) {
	case string:
		raw = []byte(s)
	case []byte:
		raw = s
	default:
		encoded, err := json.Marshal(s)
		if err != nil {
			return nil, &SchemaError{Err: err}
		}
		raw = encoded
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, &SchemaError{Err: err}
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, &SchemaError{Err: err}
	}
	return compiled, nil
}

// Validate checks a decoded JSON value against schema. It returns a
// *SchemaError for a broken schema and ValidationErrors when the value does
// not conform.
func Validate(value any, schema any) error {
	compiled, err := Compile(schema)
	if err != nil {
		return err
	}

	if err := compiled.Validate(value); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return extractValidationErrors(validationErr)
		}
		return ValidationErrors{err}
	}
	return nil
}

// ValidateJSON decodes jsonStr and validates it against schema
func ValidateJSON(jsonStr string, schema any) error {
	var value any
	if err := json.Unmarshal([]byte(jsonStr), &value); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return Validate(value, schema)
}

// extractValidationErrors flattens the leaf causes of a validation error
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		return ValidationErrors{fmt.Errorf("validation error at %s: %s", locationOf(err), err.Message)}
	}

	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, extractValidationErrors(cause)...)
	}
	return errs
}

func locationOf(err *jsonschema.ValidationError) string {
	if err.InstanceLocation == "" {
		return "/"
	}
	return err.InstanceLocation
}
