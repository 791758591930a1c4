package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal styles. lipgloss drops the colors when stdout is not a terminal.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
)
