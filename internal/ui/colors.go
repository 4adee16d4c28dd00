package ui

import "github.com/charmbracelet/lipgloss"

const (
	Background = lipgloss.Color("#000")

	Primary   = lipgloss.Color("#fff")
	Secondary = lipgloss.Color("#888")
	Faded     = lipgloss.Color("#555")

	Blue   = lipgloss.Color("#4db7ff")
	Green  = lipgloss.Color("#00a352")
	Red    = lipgloss.Color("#c42912")
	Yellow = lipgloss.Color("#c4b810")
	Orange = lipgloss.Color("#c27510")
	Amber  = lipgloss.Color("#d9a514")
)

// PriorityColor maps a priority name to its accent color.
func PriorityColor(priority string) lipgloss.Color {
	switch priority {
	case "HIGH":
		return Red
	case "LOW":
		return Blue
	default:
		return Yellow
	}
}
