// Package style defines the visual theme for podscan.
// All colours and text styles live here so that every TUI component and
// formatted output shares one look-and-feel.
//
// Call Init(colorEnabled) once at startup. After that, use the exported
// styles and helper functions freely.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ─── Colour palette ──────────────────────────────────────────────────────────

var (
	// Brand / primary
	Blue = lipgloss.Color("#0078D4")
	Cyan = lipgloss.Color("#00B4D8")

	// Semantic
	Green  = lipgloss.Color("#22C55E")
	Yellow = lipgloss.Color("#FACC15")
	Red    = lipgloss.Color("#EF4444")
	Orange = lipgloss.Color("#F97316")
	Purple = lipgloss.Color("#A855F7")

	// Neutral
	White  = lipgloss.Color("#FAFAFA")
	Dim    = lipgloss.Color("#6B7280")
	Subtle = lipgloss.Color("#374151")
)

// ─── Reusable text styles ────────────────────────────────────────────────────

var (
	// Title is used for top-level headings.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Blue).
		PaddingBottom(1)

	// Success style for positive confirmations.
	Success = lipgloss.NewStyle().
		Foreground(Green).
		Bold(true)

	// Warning style for non-fatal alerts.
	Warning = lipgloss.NewStyle().
		Foreground(Yellow)

	// Error style for error messages.
	Error = lipgloss.NewStyle().
		Foreground(Red).
		Bold(true)

	// DimText is used for hints, secondary info and disabled items.
	DimText = lipgloss.NewStyle().
		Foreground(Dim)

	// Bold is a simple bold helper.
	Bold = lipgloss.NewStyle().Bold(true)

	// TableHeader styles table column headers.
	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(Subtle)

	// TableCell is the default table cell style.
	TableCell = lipgloss.NewStyle().
			PaddingRight(2)

	// SpinnerColor is the colour used for spinner animations.
	SpinnerColor = Cyan
)

// ─── Severity styles ─────────────────────────────────────────────────────────

// severityStyles maps normalized severity names to their display styles.
var severityStyles = map[string]lipgloss.Style{
	"critical":   lipgloss.NewStyle().Foreground(Purple).Bold(true),
	"high":       lipgloss.NewStyle().Foreground(Red).Bold(true),
	"medium":     lipgloss.NewStyle().Foreground(Orange),
	"low":        lipgloss.NewStyle().Foreground(Yellow),
	"negligible": lipgloss.NewStyle().Foreground(Dim),
	"unknown":    lipgloss.NewStyle().Foreground(Dim),
}

// SeverityStyle returns the display style for a normalized severity name.
func SeverityStyle(severity string) lipgloss.Style {
	if s, ok := severityStyles[severity]; ok {
		return s
	}
	return DimText
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// Enabled tracks whether styles should render ANSI output.
// When false, all styles degrade to plain text.
var Enabled = true

// Init configures the style package. Call once at startup.
func Init(colorEnabled bool) {
	Enabled = colorEnabled
	if !colorEnabled {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// SuccessIcon returns a themed check mark.
func SuccessIcon() string {
	if Enabled {
		return Success.Render("✓")
	}
	return "OK"
}

// ErrorIcon returns a themed X mark.
func ErrorIcon() string {
	if Enabled {
		return Error.Render("✗")
	}
	return "ERROR"
}

// WarningIcon returns a themed warning indicator.
func WarningIcon() string {
	if Enabled {
		return Warning.Render("!")
	}
	return "WARN"
}

// Hint renders a "next step" hint message.
func Hint(msg string) string {
	return DimText.Render("→ " + msg)
}
