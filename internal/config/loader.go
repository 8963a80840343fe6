package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// RawConfig is the untyped nested mapping parsed from one config file.
type RawConfig = map[string]any

// parseFunc turns the bytes of one config file into a RawConfig
type parseFunc func(path string, data []byte) (RawConfig, error)

// configParsers maps a lower-cased file extension to its parser.
var configParsers = map[string]parseFunc{
	".yaml": parseYAMLConfig,
	".yml":  parseYAMLConfig,
	".ini":  parseINIConfig,
}

// LoadFile loads a single YAML or INI config file
func LoadFile(path string) (RawConfig, error) {
	// Check if file exists
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Kind: "file", Name: path}
	}

	ext := strings.ToLower(filepath.Ext(path))
	parse, ok := configParsers[ext]
	if !ok {
		return nil, &UnsupportedFormatError{Ext: ext}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return parse(path, data)
}

func parseYAMLConfig(path string, data []byte) (RawConfig, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Format: "yaml", Err: err}
	}

	// An empty document is an empty config
	if doc == nil {
		return RawConfig{}, nil
	}

	root, ok := NormalizeYAML(doc).(map[string]any)
	if !ok {
		return nil, &ParseError{Path: path, Format: "yaml", Err: fmt.Errorf("top-level value is %T, expected a mapping", doc)}
	}
	return root, nil
}

// parseINIConfig returns section name -> key -> string value. Values are
// never coerced; the DEFAULT section is only present when it holds keys.
func parseINIConfig(path string, data []byte) (RawConfig, error) {
	file, err := ini.LoadSources(ini.LoadOptions{}, data)
	if err != nil {
		return nil, &ParseError{Path: path, Format: "ini", Err: err}
	}

	result := make(RawConfig)
	for _, section := range file.Sections() {
		keys := section.Keys()
		if section.Name() == ini.DefaultSection && len(keys) == 0 {
			continue
		}

		values := make(map[string]any, len(keys))
		for _, key := range keys {
			values[key.Name()] = key.String()
		}
		result[section.Name()] = values
	}

	return result, nil
}

// NormalizeYAML converts map[any]any produced for non-string keys into
// map[string]any so the merger only ever sees one mapping type.
func NormalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = NormalizeYAML(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = NormalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = NormalizeYAML(item)
		}
		return val
	default:
		return v
	}
}

// parseDurationString parses duration strings like "30s", "5m", "1h"
func parseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	// Try parsing as Go duration
	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	// Handle additional formats like "1 minute", "30 seconds"
	duration = strings.ToLower(duration)
	duration = strings.ReplaceAll(duration, " ", "")

	// Longest words first so "seconds" is not rewritten as "s" + "s"
	replacements := []struct{ word, abbrev string }{
		{"seconds", "s"},
		{"second", "s"},
		{"minutes", "m"},
		{"minute", "m"},
		{"hours", "h"},
		{"hour", "h"},
	}

	for _, r := range replacements {
		duration = strings.ReplaceAll(duration, r.word, r.abbrev)
	}

	return time.ParseDuration(duration)
}
