// Package cli renders code trees and modification records for the
// terminal and handles prompts, progress and interrupts for the
// groundwork commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	mossColor   = lipgloss.Color("#7FB069")
	tealColor   = lipgloss.Color("#4ECDC4")
	amberColor  = lipgloss.Color("#FFE66D")
	redColor    = lipgloss.Color("#FF6B6B")
	mintColor   = lipgloss.Color("#95E1D3")
	greyColor   = lipgloss.Color("#666666")
	borderColor = lipgloss.Color("#333333")

	ThemeColor    = lipgloss.Color("#E09F3E")
	CategoryColor = lipgloss.Color("#5FA8D3")
	CodeColor     = lipgloss.Color("#9EA3B0")
)

var (
	// InfoStyle is for neutral status lines.
	InfoStyle = lipgloss.NewStyle().Foreground(mintColor)
	// SubtleStyle is for counts, sentence ids and other secondary text.
	SubtleStyle = lipgloss.NewStyle().Foreground(greyColor)
	// BoldStyle is for file and sentence headers.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// Tree levels.
	ThemeStyle    = lipgloss.NewStyle().Bold(true).Foreground(ThemeColor)
	CategoryStyle = lipgloss.NewStyle().Foreground(CategoryColor)
	CodeStyle     = lipgloss.NewStyle().Foreground(CodeColor)

	// Modification record lines.
	AddedStyle   = lipgloss.NewStyle().Foreground(tealColor)
	DeletedStyle = lipgloss.NewStyle().Foreground(redColor)

	successStyle = lipgloss.NewStyle().Foreground(tealColor)
	warningStyle = lipgloss.NewStyle().Foreground(amberColor)
	errorStyle   = lipgloss.NewStyle().Foreground(redColor)
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(mossColor)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(mossColor)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)
)

// FormatSuccess renders a completed-operation message.
func FormatSuccess(message string) string {
	return successStyle.Render("✓ " + message)
}

// FormatError renders a message for a failed command.
func FormatError(message string) string {
	return errorStyle.Render("✗ " + message)
}

// FormatWarning renders a warning.
func FormatWarning(message string) string {
	return warningStyle.Render("⚠️ " + message)
}

// FormatInfo renders an informational message.
func FormatInfo(message string) string {
	return InfoStyle.Render("ℹ️ " + message)
}

// FormatPrompt renders a question waiting for input.
func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// RenderBox frames content under a sprout-marked title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("🌱 "+title), content))
}
