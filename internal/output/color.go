package output

import (
	"github.com/fatih/color"
)

// ColorMode mirrors the CLI's --color auto|always|never flag.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses the --color flag value.
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Apply sets the process-wide color.NoColor flag for the duration of CLI
// output rendering, matching the teacher's use of fatih/color for
// terminal-aware ANSI output.
func (m ColorMode) Apply() {
	switch m {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	case ColorAuto:
		// leave fatih/color's own terminal detection in effect
	}
}

var (
	countColor = color.New(color.FgGreen, color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
	pathColor  = color.New(color.FgCyan)
)

// FormatCount renders a match count in bold green when color is enabled.
func FormatCount(n int) string {
	return countColor.Sprintf("%d", n)
}

// FormatError renders an error message in bold red when color is enabled.
func FormatError(msg string) string {
	return errorColor.Sprint(msg)
}

// FormatPath renders a face source string in cyan when color is enabled.
func FormatPath(s string) string {
	return pathColor.Sprint(s)
}
