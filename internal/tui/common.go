package tui

import (
	"github.com/blackwell-systems/hubctl/internal/certify"
	"github.com/charmbracelet/lipgloss"
)

// Color palette matching the fatih/color output of the plain commands
var (
	// ColorGreen for approved versions and success alerts
	ColorGreen = lipgloss.AdaptiveColor{Light: "#00AF00", Dark: "#00D700"}

	// ColorCyan for distributions and metadata
	ColorCyan = lipgloss.AdaptiveColor{Light: "#00AFAF", Dark: "#00D7D7"}

	// ColorWhite for primary text
	ColorWhite = lipgloss.AdaptiveColor{Light: "#262626", Dark: "#FFFFFF"}

	// ColorGray for secondary text and help
	ColorGray = lipgloss.AdaptiveColor{Light: "#767676", Dark: "#808080"}

	// ColorYellow for versions awaiting review
	ColorYellow = lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD700"}

	// ColorRed for rejected versions and danger alerts
	ColorRed = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
)

// Reusable styles
var (
	StyleNormal = lipgloss.NewStyle().Foreground(ColorWhite)

	StyleHighlight = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	StyleHelp = lipgloss.NewStyle().Foreground(ColorGray)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Foreground(ColorGray).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	StyleDanger  = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
)

// StateStyle returns the style for a certification state.
func StateStyle(s certify.State) lipgloss.Style {
	switch s {
	case certify.Approved:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case certify.Rejected:
		return lipgloss.NewStyle().Foreground(ColorRed)
	default:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	}
}

// AlertStyle returns the style for an alert variant.
func AlertStyle(variant string) lipgloss.Style {
	if variant == certify.AlertSuccess {
		return StyleSuccess
	}
	return StyleDanger
}
