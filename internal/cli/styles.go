package cli

import "github.com/charmbracelet/lipgloss"

// Palette shared by every styled CLI output.
const (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorHighlight = lipgloss.Color("#3B82F6")
	ColorError     = lipgloss.Color("#EF4444")
)

var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// NameStyle is for template and provider names.
	NameStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// ErrorStyle is for fatal messages printed before exiting.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// indentStyle nests property lines under their template.
	indentStyle = lipgloss.NewStyle().PaddingLeft(4)
)
