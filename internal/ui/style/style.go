// Package style provides the colors and icons shared by kiln's terminal output.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Ember = lipgloss.Color("#F97316")
	Ash   = lipgloss.Color("#6B7280")
	Green = lipgloss.Color("#16A34A")
	Red   = lipgloss.Color("#DC2626")
	Amber = lipgloss.Color("#D97706")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
)
