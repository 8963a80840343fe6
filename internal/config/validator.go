package config

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// validMethods are the HTTP methods an interface may declare
var validMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// Validate checks the merged configuration and returns every problem found,
// sorted by path.
func Validate(c *InterfaceConfig) []ValidationError {
	var errors []ValidationError

	for _, env := range c.Environments() {
		settings, ok := c.envConfig[env].(map[string]any)
		if !ok {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("env.%s", env),
				Message: "environment settings must be a mapping",
			})
			continue
		}
		if base, _ := settings["api_base_url"].(string); base == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("env.%s.api_base_url", env),
				Message: "api_base_url is required",
			})
		}
	}

	modules := c.GetAllInterfaces()
	for _, module := range sortedKeys(modules) {
		ifaces := modules[module].(map[string]any)
		for _, name := range sortedKeys(ifaces) {
			errors = append(errors, validateInterface(module, name, ifaces[name])...)
		}
	}

	if global, ok := c.interfaceConfig["global"]; ok {
		errors = append(errors, validateGlobal(global)...)
	}

	sort.SliceStable(errors, func(i, j int) bool {
		return errors[i].Path < errors[j].Path
	})
	return errors
}

func validateInterface(module, name string, value any) []ValidationError {
	var errors []ValidationError
	prefix := fmt.Sprintf("interfaces.%s.%s", module, name)

	entry, ok := value.(map[string]any)
	if !ok {
		return []ValidationError{{Path: prefix, Message: "interface entry must be a mapping"}}
	}

	if url, _ := entry["url"].(string); url == "" {
		errors = append(errors, ValidationError{
			Path:    prefix + ".url",
			Message: "url is required",
		})
	}

	method, _ := entry["method"].(string)
	if method == "" {
		errors = append(errors, ValidationError{
			Path:    prefix + ".method",
			Message: "method is required",
		})
	} else if !stringInSlice(strings.ToUpper(method), validMethods) {
		errors = append(errors, ValidationError{
			Path:    prefix + ".method",
			Message: fmt.Sprintf("invalid method: %s", method),
		})
	}

	if headers, ok := entry["headers"]; ok && headers != nil {
		if _, isMap := headers.(map[string]any); !isMap {
			errors = append(errors, ValidationError{
				Path:    prefix + ".headers",
				Message: "headers must be a mapping",
			})
		}
	}

	if timeout, ok := entry["timeout"]; ok && timeout != nil {
		if _, err := toTimeout(timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    prefix + ".timeout",
				Message: err.Error(),
			})
		}
	}

	return errors
}

func validateGlobal(value any) []ValidationError {
	global, ok := value.(map[string]any)
	if !ok {
		return []ValidationError{{Path: "global", Message: "global must be a mapping"}}
	}

	var errors []ValidationError
	if headers, ok := global["default_headers"]; ok {
		if _, isMap := headers.(map[string]any); !isMap {
			errors = append(errors, ValidationError{
				Path:    "global.default_headers",
				Message: "default_headers must be a mapping",
			})
		}
	}
	if timeout, ok := global["default_timeout"]; ok {
		if _, err := toTimeout(timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    "global.default_timeout",
				Message: err.Error(),
			})
		}
	}
	return errors
}

// stringInSlice checks if a string is in a slice
func stringInSlice(str string, slice []string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
