package ui

import "github.com/charmbracelet/lipgloss"

var (
	patreonCoral = lipgloss.Color("#FF424D")
	softCyan     = lipgloss.Color("#5FD7FF")
	softYellow   = lipgloss.Color("#FFD75F")
	softGreen    = lipgloss.Color("#5FFF87")
	softMagenta  = lipgloss.Color("#D787FF")
	errorRed     = lipgloss.Color("#FF5F5F")
	dimGray      = lipgloss.Color("#8A8A8A")

	logoStyle = lipgloss.NewStyle().
			Foreground(patreonCoral).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(softCyan).
			Bold(true)

	valueStyle     = lipgloss.NewStyle().Foreground(softYellow)
	successStyle   = lipgloss.NewStyle().Foreground(softGreen).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(errorRed).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(softYellow)
	highlightStyle = lipgloss.NewStyle().Foreground(softMagenta).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(dimGray).Faint(true)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(patreonCoral).
			Padding(0, 2)
)

var colorEnabled = true

// SetColorEnabled turns styling on or off for everything printed by this package
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

func render(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

// Cyan renders a label
func Cyan(text string) string { return render(labelStyle, text) }

// Yellow renders a value
func Yellow(text string) string { return render(valueStyle, text) }

// Red renders an error
func Red(text string) string { return render(errorStyle, text) }

// Green renders a success message
func Green(text string) string { return render(successStyle, text) }

// Magenta renders a highlighted message
func Magenta(text string) string { return render(highlightStyle, text) }

// Dim renders secondary text
func Dim(text string) string { return render(dimStyle, text) }
