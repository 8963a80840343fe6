package testdata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Well-known TestCase fields
const (
	FieldID             = "case_id"
	FieldDescription    = "description"
	FieldModule         = "module"
	FieldInterface      = "interface"
	FieldURL            = "url"
	FieldMethod         = "method"
	FieldHeaders        = "headers"
	FieldParams         = "params"
	FieldExpectedResult = "expected_result"
	FieldExpectedStatus = "expected_status"
	FieldSchema         = "schema"
	FieldToken          = "token"
)

// TestCase is one record of a test-data file. It is read once and never
// modified afterwards.
type TestCase map[string]any

// Has reports whether field is present with a non-empty value
func (tc TestCase) Has(field string) bool {
	switch v := tc[field].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return true
	}
}

// String returns field as text. Whole numbers print without a fraction.
func (tc TestCase) String(field string) string {
	switch v := tc[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// ID returns the case_id field
func (tc TestCase) ID() string {
	return tc.String(FieldID)
}

// Description returns the description field
func (tc TestCase) Description() string {
	return tc.String(FieldDescription)
}

// JSON returns field as structured data. Text cells hold JSON documents and
// are decoded; values that are already structured (from YAML or JSON data
// files) are returned as is. A missing or empty field yields nil.
func (tc TestCase) JSON(field string) (any, error) {
	if !tc.Has(field) {
		return nil, nil
	}

	text, ok := tc[field].(string)
	if !ok {
		return tc[field], nil
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("field %s of case %s is not valid JSON: %w", field, tc.ID(), err)
	}
	return v, nil
}

// Mapping returns field as a JSON object, or nil when the field is empty
func (tc TestCase) Mapping(field string) (map[string]any, error) {
	v, err := tc.JSON(field)
	if err != nil || v == nil {
		return nil, err
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %s of case %s must be an object, got %T", field, tc.ID(), v)
	}
	return m, nil
}

// Filter returns the cases whose ID is in ids, in file order. No ids means
// every case.
func Filter(cases []TestCase, ids ...string) []TestCase {
	if len(ids) == 0 {
		return cases
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var out []TestCase
	for _, tc := range cases {
		if wanted[tc.ID()] {
			out = append(out, tc)
		}
	}
	return out
}
