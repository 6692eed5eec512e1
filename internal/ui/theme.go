// Package ui defines the terminal color theme for interactive output.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"sdutil/internal/sizespec"
)

// Theme groups the lipgloss styles used by the interactive prompts and the
// library listing.
type Theme struct {
	Bold   lipgloss.Style
	Cyan   lipgloss.Style
	Green  lipgloss.Style
	Yellow lipgloss.Style
	Red    lipgloss.Style
}

// NewTheme returns the default ANSI color theme.
func NewTheme() Theme {
	return Theme{
		Bold:   lipgloss.NewStyle().Bold(true),
		Cyan:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Green:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Yellow: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Red:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// SeverityStyle maps a size severity tag onto its display color: green for
// low, yellow for medium, red for high.
func (theme Theme) SeverityStyle(severity sizespec.Severity) lipgloss.Style {
	switch severity {
	case sizespec.SeverityHigh:
		return theme.Red
	case sizespec.SeverityMedium:
		return theme.Yellow
	default:
		return theme.Green
	}
}
