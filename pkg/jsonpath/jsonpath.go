package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// IsPath reports whether key is a JSONPath expression rather than a plain
// top-level field name.
func IsPath(key string) bool {
	return strings.HasPrefix(key, "$")
}

// Lookup returns the decoded value at path in body. Numbers decode as
// float64, objects as map[string]any, arrays as []any.
func Lookup(body []byte, path string) (any, bool) {
	result := gjson.GetBytes(body, toGjsonPath(path))
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// Extract extracts a value from a JSON string as text. A JSON null
// extracts as "null".
func Extract(json string, path string) (string, error) {
	if json == "" {
		return "", fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}

	result := gjson.Get(json, toGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// toGjsonPath converts $.users[0]['name'] style expressions to gjson's
// users.0.name form.
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	replacer := strings.NewReplacer(`['`, ".", `']`, "", `["`, ".", `"]`, "", "[", ".", "]", "")
	path = replacer.Replace(path)
	return strings.TrimPrefix(path, ".")
}
