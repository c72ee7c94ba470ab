// Package ui holds shared terminal styling for the CLI.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	missedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Colored reports whether the terminal supports color output.
func Colored() bool {
	return termenv.EnvColorProfile() != termenv.Ascii
}

// Header renders a section header.
func Header(s string) string { return headerStyle.Render(s) }

// Success renders a success line.
func Success(s string) string { return successStyle.Render(s) }

// Error renders an error line.
func Error(s string) string { return errorStyle.Render(s) }

// Faint renders de-emphasized text.
func Faint(s string) string { return faintStyle.Render(s) }

// Check renders a habit completion mark.
func Check(done bool) string {
	if done {
		return doneStyle.Render("✓")
	}
	return missedStyle.Render("·")
}
