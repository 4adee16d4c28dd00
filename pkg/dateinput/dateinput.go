// Package dateinput is a text input that understands casual date
// phrases ("tomorrow", "fri", "in 2 weeks", "21/04") and resolves
// them to a concrete day. The app uses it to set scheduling windows.
package dateinput

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	indicator = lipgloss.NewStyle().Padding(0, 1).Bold(true)
	checkmark = indicator.Copy().
			Foreground(lipgloss.AdaptiveColor{Light: "#00ad3b", Dark: "#73F59F"}).
			Render("✓")

	cross = indicator.Copy().
		Foreground(lipgloss.AdaptiveColor{Light: "", Dark: "#FF5047"}).
		Render("✗")

	faded = lipgloss.AdaptiveColor{Light: "#666", Dark: "#999"}
)

type Model struct {
	Label string

	i     textinput.Model
	value *time.Time
}

func NewModel() Model {
	i := textinput.NewModel()
	i.Focus()
	i.CharLimit = 20
	i.Prompt = ""
	return Model{Label: "due", i: i}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.i, cmd = m.i.Update(msg)
		m.value = Parse(m.i.Value(), time.Now())
		return m, cmd
	}
	return m, nil
}

func (m *Model) View() string {
	indicator := cross
	if m.i.Value() == "" {
		indicator = ""
	} else if m.value != nil {
		indicator = checkmark + " " + m.value.Format("Mon 2 Jan")
	}
	return lipgloss.NewStyle().Foreground(faded).Render(m.Label+": ") + m.i.View() + indicator
}

// Value is the parsed day, or nil while the input doesn't resolve.
func (m *Model) Value() *time.Time {
	return m.value
}

func (m *Model) SetValue(t *time.Time) {
	m.value = t
	if t == nil {
		m.i.SetValue("")
		return
	}
	m.i.SetValue(t.Format("2/1/2006"))
}

func (m *Model) Reset() {
	m.value = nil
	m.i.SetValue("")
}
