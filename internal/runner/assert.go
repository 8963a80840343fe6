package runner

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/wesleyorama2/caserun/pkg/jsonpath"
)

// checkExpected asserts that every key of expected is present in the
// response and equal to its value. Keys starting with "$" are paths into
// the raw body, other keys name top-level fields of the decoded response.
func checkExpected(expected map[string]any, parsed any, body []byte) []Assertion {
	keys := make([]string, 0, len(expected))
	for key := range expected {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	assertions := make([]Assertion, 0, len(keys))
	for _, key := range keys {
		want := expected[key]

		var got any
		var found bool
		if jsonpath.IsPath(key) {
			got, found = jsonpath.Lookup(body, key)
		} else if obj, ok := parsed.(map[string]any); ok {
			got, found = obj[key]
		}

		a := Assertion{Name: key, Expected: want, Actual: got}
		switch {
		case !found:
			a.Message = fmt.Sprintf("response is missing field: %s", key)
		case !equalJSON(want, got):
			a.Message = fmt.Sprintf("assertion failed: %s expected: %v actual: %v", key, want, got)
		default:
			a.Passed = true
		}
		assertions = append(assertions, a)
	}
	return assertions
}

func checkStatus(expected, actual int) Assertion {
	a := Assertion{Name: "status", Expected: expected, Actual: actual, Passed: expected == actual}
	if !a.Passed {
		a.Message = fmt.Sprintf("expected status %d, got %d", expected, actual)
	}
	return a
}

// equalJSON compares two values by their JSON form, so integers read from
// YAML compare equal to the float64 numbers of a decoded response.
func equalJSON(a, b any) bool {
	na, errA := normalize(a)
	nb, errB := normalize(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return reflect.DeepEqual(na, nb)
}

func normalize(v any) (any, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}
