// Package tui holds the terminal UI of the aether CLI: the theme, the deploy
// progress view, prompts, and the interactive dashboard.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette - aether brand theme (violet and cyan on dark)
var (
	// Primary brand color - Violet #875fff
	ColorPrimary = lipgloss.Color("99")

	// Secondary brand color - Cyan #00d7ff
	ColorSecondary = lipgloss.Color("45")

	// Black for backgrounds #000000
	ColorBlack = lipgloss.Color("16")

	// White for high contrast text #eeeeee
	ColorWhite = lipgloss.Color("255")

	ColorSuccess = lipgloss.Color("42")
	ColorError   = lipgloss.Color("196")
	ColorWarning = lipgloss.Color("214")

	// Muted/subtle text - Gray #585858
	ColorMuted = lipgloss.Color("240")
)

// Text styles
var (
	// TitleStyle is used for main titles and headings
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// HeaderStyle is used for section headers
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// LabelStyle is used for field labels in detail views and forms
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)

// Tab and list styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlack).
			Background(ColorPrimary).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 1)

	ListItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	ActiveListItemStyle = lipgloss.NewStyle().
				Foreground(ColorPrimary).
				Bold(true).
				PaddingLeft(2)

	// PaneStyle frames the body of the dashboard
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)
)

// Status markers
const (
	MarkPending = "○"
	MarkSuccess = "✓"
	MarkFailed  = "✗"
	MarkSkipped = "-"

	ListCursor = ">"
	ListBullet = "-"
)

// RenderTitle renders text with the title style
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSuccess renders a success message with a checkmark
func RenderSuccess(text string) string {
	return SuccessStyle.Render(MarkSuccess + " " + text)
}

// RenderError renders an error message with an X mark
func RenderError(text string) string {
	return ErrorStyle.Render(MarkFailed + " " + text)
}

// RenderWarning renders a warning message
func RenderWarning(text string) string {
	return WarningStyle.Render("! " + text)
}

// RenderMuted renders text with the muted style
func RenderMuted(text string) string {
	return MutedStyle.Render(text)
}

// RenderListItem renders a list item with optional selection state
func RenderListItem(text string, selected bool) string {
	if selected {
		return ActiveListItemStyle.Render(ListCursor + " " + text)
	}
	return ListItemStyle.Render(ListBullet + " " + text)
}

// RenderField renders a "label: value" line
func RenderField(label, value string) string {
	return LabelStyle.Render(label+":") + " " + value
}

// RenderStatus colors a deployment status
func RenderStatus(status string) string {
	switch status {
	case "running", "succeeded", "active":
		return SuccessStyle.Render(status)
	case "failed", "error", "crashed":
		return ErrorStyle.Render(status)
	case "pending", "building", "deploying":
		return WarningStyle.Render(status)
	default:
		return MutedStyle.Render(status)
	}
}
