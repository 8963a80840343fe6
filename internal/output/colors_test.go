package output

import (
	"os"
	"testing"

	"github.com/fatih/color"
)

func TestColorSchemes(t *testing.T) {
	scheme := DefaultColorScheme()
	for name, c := range map[string]*color.Color{
		"Method":    scheme.Method,
		"URL":       scheme.URL,
		"Pass":      scheme.Pass,
		"Fail":      scheme.Fail,
		"Skip":      scheme.Skip,
		"HeaderKey": scheme.HeaderKey,
		"Highlight": scheme.Highlight,
	} {
		if c == nil {
			t.Errorf("DefaultColorScheme.%s should not be nil", name)
		}
	}

	noColor := NoColorScheme()
	if got := noColor.Pass.Sprint("ok"); got != "ok" {
		t.Errorf("NoColorScheme should print plain text, got %q", got)
	}
}

func TestIcons(t *testing.T) {
	tests := []struct {
		name     string
		icon     func(bool) string
		expected string
	}{
		{"SuccessIcon", SuccessIcon, "✓"},
		{"ErrorIcon", ErrorIcon, "✗"},
		{"WarningIcon", WarningIcon, "⚠"},
	}

	for _, tt := range tests {
		if got := tt.icon(true); got != tt.expected {
			t.Errorf("%s(true) = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer f.Close()

	if IsTerminal(f) {
		t.Errorf("a regular file is not a terminal")
	}
}
