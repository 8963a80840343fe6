package config

import (
	"fmt"
)

// NotFoundError reports a missing file or a missing key inside loaded config.
type NotFoundError struct {
	// Kind is what was looked up: "file", "module", "interface" or "environment"
	Kind string
	// Name identifies the missing item (a path, or "module.interface")
	Name string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case "file":
		return fmt.Sprintf("file not found: %s", e.Name)
	case "interface":
		return fmt.Sprintf("interface config not found: %s", e.Name)
	default:
		return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
	}
}

// ParseError reports malformed YAML, INI, JSON or CSV content.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError reports a file extension no parser is registered for.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return "unsupported file format: no extension"
	}
	return fmt.Sprintf("unsupported file format: %s", e.Ext)
}

// DataReadError wraps any failure raised while reading a test-data file.
type DataReadError struct {
	Path     string
	Encoding string
	Err      error
}

func (e *DataReadError) Error() string {
	return fmt.Sprintf("failed to read %s with encoding %s: %v", e.Path, e.Encoding, e.Err)
}

func (e *DataReadError) Unwrap() error {
	return e.Err
}
