package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	TaskTitle     = lipgloss.NewStyle().Bold(true)
	DoneTitle     = lipgloss.NewStyle().Foreground(Secondary).Strikethrough(true)
	PinMarker     = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	PriorityBadge = lipgloss.NewStyle().Padding(0, 1)

	TaskDivider = lipgloss.NewStyle().Foreground(Faded).Padding(0, 1).Render("∙")
	TaskTimer   = lipgloss.NewStyle().Foreground(Blue)

	Banner     = lipgloss.NewStyle().Foreground(Orange).Padding(0, 1)
	StatusLine = lipgloss.NewStyle().Foreground(Secondary)
)
