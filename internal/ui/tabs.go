package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	tabContainer = lipgloss.NewStyle().Padding(1, 1)
	activeTab    = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	inactiveTab  = lipgloss.NewStyle().Foreground(Secondary)
	tabDivider   = lipgloss.NewStyle().Foreground(Faded)
	tabBadge     = lipgloss.NewStyle().Foreground(Faded)
)

// Tabs renders the view-filter switcher. Each tab may carry a count
// badge; Info is free text rendered right-aligned.
type Tabs struct {
	tabs   []string
	counts []int
	i      int

	Width int
	Info  string
}

func NewTabs(tabs []string) Tabs {
	return Tabs{tabs: tabs, counts: make([]int, len(tabs))}
}

// SetCount attaches a badge to tab i; a negative count hides it.
func (m *Tabs) SetCount(i, n int) {
	if i >= 0 && i < len(m.counts) {
		m.counts[i] = n
	}
}

func (m Tabs) View() string {
	tabs := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		r := inactiveTab
		if i == m.i {
			r = activeTab
		}
		label := r.Render(t)
		if m.counts[i] > 0 {
			label += tabBadge.Render(" " + strconv.Itoa(m.counts[i]))
		}
		tabs[i] = label
	}
	w := lipgloss.Width
	left := strings.Join(tabs, tabDivider.Render(" | "))
	right := m.Info
	space := lipgloss.NewStyle().Width(m.Width - 2 - w(left) - w(right)).Render("")
	return tabContainer.Render(lipgloss.JoinHorizontal(lipgloss.Center, left, space, right)) + "\n"
}

func (m Tabs) Value() int {
	return m.i
}

func (m *Tabs) Set(i int) {
	m.i = clamp(i, 0, len(m.tabs)-1)
}

// Next cycles forward, wrapping around.
func (m *Tabs) Next() {
	m.i = (m.i + 1) % len(m.tabs)
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
