package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Method    *color.Color
	URL       *color.Color
	Pass      *color.Color
	Fail      *color.Color
	Skip      *color.Color
	HeaderKey *color.Color
	Highlight *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Method:    color.New(color.FgBlue, color.Bold),
		URL:       color.New(color.FgCyan),
		Pass:      color.New(color.FgGreen, color.Bold),
		Fail:      color.New(color.FgRed, color.Bold),
		Skip:      color.New(color.FgYellow, color.Bold),
		HeaderKey: color.New(color.FgYellow),
		Highlight: color.New(color.FgMagenta, color.Bold),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range []*color.Color{scheme.Method, scheme.URL, scheme.Pass, scheme.Fail, scheme.Skip, scheme.HeaderKey, scheme.Highlight} {
		c.DisableColor()
	}
	return scheme
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	if noColor {
		return "✗"
	}
	return color.New(color.FgRed).Sprint("✗")
}

// WarningIcon returns a warning symbol with appropriate color
func WarningIcon(noColor bool) string {
	if noColor {
		return "⚠"
	}
	return color.New(color.FgYellow).Sprint("⚠")
}
