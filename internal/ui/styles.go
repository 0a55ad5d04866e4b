package ui

import "github.com/charmbracelet/lipgloss"

var (
	primary     = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A855F7"}
	muted       = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	success     = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}
	destructive = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}
	border      = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primary)
	subtitleStyle = lipgloss.NewStyle().Foreground(muted)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(1, 2)
	buttonStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(primary).Padding(0, 2)
	disabledStyle = lipgloss.NewStyle().Foreground(muted).Background(border).Padding(0, 2)
	successStyle  = lipgloss.NewStyle().Foreground(success)
	errorStyle    = lipgloss.NewStyle().Foreground(destructive)
	helpStyle     = lipgloss.NewStyle().Foreground(muted).Italic(true)
)
