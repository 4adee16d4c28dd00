package main

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zenflowapp/zenflow/internal/ui"
	"github.com/zenflowapp/zenflow/pkg/backup"
	"github.com/zenflowapp/zenflow/pkg/dateinput"
	"github.com/zenflowapp/zenflow/pkg/notify"
	"github.com/zenflowapp/zenflow/pkg/query"
	"github.com/zenflowapp/zenflow/pkg/store"
	"github.com/zenflowapp/zenflow/pkg/task"
	"github.com/zenflowapp/zenflow/pkg/track"
)

const (
	// tabs render three lines, the banner one more
	headerHeight = 5
	footerHeight = 1
)

type mode int

const (
	modeNormal mode = iota
	modeCreate
	modeRename
	modeDue
	modeSearch
)

// the tab order must match the list handed to ui.NewTabs in main
var tabFilters = []query.Filter{
	{Kind: query.All},
	{Kind: query.Pinned},
	{Kind: query.ByPriority, Priority: task.PriorityHigh},
	{Kind: query.Completed},
}

type app struct {
	mode   mode
	loaded bool

	viewport    viewport.Model
	titleinput  textinput.Model
	searchinput textinput.Model
	dateinput   dateinput.Model
	tabs        ui.Tabs

	// full snapshot, re-read after every mutation
	tasks   []task.Task
	visible []task.Task
	summary notify.Summary

	search  string
	sortCfg query.SortConfig
	cursor  int
	status  string

	running *task.TimeLog

	store   *store.Store
	codec   *backup.Codec
	tracker *track.Tracker
	now     func() time.Time
}

func (m app) Init() tea.Cmd {
	return nil
}

func (m *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		verticalMargins := headerHeight + footerHeight
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - verticalMargins
		m.tabs.Width = msg.Width

		if !m.loaded {
			m.refresh()
			m.loaded = true
		}
		m.setCursor(m.cursor)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			m.mode = modeNormal
			m.status = ""
		default:
			cmd = m.keyUpdate(msg)
		}
	}
	m.render()
	return m, cmd
}

// handle keys differently based on the current mode
func (m *app) keyUpdate(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.mode {
	case modeCreate, modeRename:
		if msg.Type == tea.KeyEnter {
			title := m.titleinput.Value()
			if !task.ValidTitle(title) {
				m.status = "title must not be empty"
				return nil
			}
			if m.mode == modeCreate {
				m.create(title)
			} else if t := m.atCursor(); t != nil {
				m.patch(t.ID, store.TaskPatch{Title: &title})
			}
			m.mode = modeNormal
			return nil
		}
		m.titleinput, cmd = m.titleinput.Update(msg)
	case modeDue:
		if msg.Type == tea.KeyEnter {
			if t := m.atCursor(); t != nil {
				p := store.TaskPatch{ClearDates: true}
				if d := m.dateinput.Value(); d != nil {
					// a bare end date: due = end of the chosen day
					p.EndDate = task.MillisPtr(d.Add(24*time.Hour - time.Millisecond))
				}
				m.patch(t.ID, p)
			}
			m.mode = modeNormal
			return nil
		}
		m.dateinput, cmd = m.dateinput.Update(msg)
	case modeSearch:
		if msg.Type == tea.KeyEnter {
			m.mode = modeNormal
			return nil
		}
		m.searchinput, cmd = m.searchinput.Update(msg)
		m.search = m.searchinput.Value()
		m.refresh()
	case modeNormal:
		switch msg.String() {
		case "q":
			return tea.Quit
		case "g":
			m.setCursor(0)
		case "G":
			m.setCursor(len(m.visible))
		case "ctrl+d":
			m.setCursor(m.cursor + 10)
		case "ctrl+u":
			m.setCursor(m.cursor - 10)
		case "j":
			m.setCursor(m.cursor + 1)
		case "k":
			m.setCursor(m.cursor - 1)
		case "tab":
			m.tabs.Next()
			m.refresh()
			m.setCursor(0)
		case "alt+1", "alt+2", "alt+3", "alt+4":
			m.tabs.Set(int(msg.String()[4] - '1'))
			m.refresh()
			m.setCursor(0)
		case "/":
			m.mode = modeSearch
			m.searchinput.SetValue(m.search)
			m.searchinput.Focus()
		case "s":
			m.cycleSort()
			m.refresh()
		case "o":
			m.mode = modeCreate
			m.titleinput.SetValue("")
		case "i":
			if t := m.atCursor(); t != nil {
				m.mode = modeRename
				m.titleinput.SetValue(t.Title)
				m.titleinput.SetCursor(len(t.Title))
			}
		case "d":
			if m.atCursor() != nil {
				m.mode = modeDue
				m.dateinput.Reset()
			}
		case "t":
			if t := m.atCursor(); t != nil {
				m.toggle(*t)
			}
		case "p":
			if t := m.atCursor(); t != nil {
				pinned := !t.IsPinned
				m.patch(t.ID, store.TaskPatch{Pinned: &pinned})
			}
		case tea.KeyDelete.String(), "x":
			if t := m.atCursor(); t != nil {
				check(m.store.DeleteTask(context.Background(), t.ID))
				m.refresh()
				m.setCursor(m.cursor)
			}
		case " ":
			m.clock()
		case "e":
			name := backup.Filename(m.now())
			if err := m.codec.ExportToFile(context.Background(), name); err != nil {
				m.status = err.Error()
			} else {
				m.status = "exported " + name
			}
		}
	}
	return cmd
}

func (m *app) create(title string) {
	t := task.New(title)
	if err := m.store.AddTask(context.Background(), t); err != nil {
		m.status = err.Error()
		return
	}
	m.refresh()
}

func (m *app) patch(id task.ID, p store.TaskPatch) {
	_, err := m.store.UpdateTask(context.Background(), id, p)
	switch {
	case errors.Is(err, store.ErrEmptyTitle):
		m.status = "title must not be empty"
	case err != nil:
		check(err)
	}
	m.refresh()
}

// toggle flips TODO <-> COMPLETED; the pin survives either way.
func (m *app) toggle(t task.Task) {
	next := task.StatusCompleted
	if t.Completed() {
		next = task.StatusTodo
	}
	m.patch(t.ID, store.TaskPatch{Status: &next})
}

func (m *app) clock() {
	t := m.atCursor()
	ctx := context.Background()
	if m.running != nil {
		_, err := m.tracker.Stop(ctx, m.running.ID, m.now())
		check(err)
		m.running = nil
		m.status = "clocked out"
		m.refresh()
		return
	}
	if t == nil {
		return
	}
	l, err := m.tracker.Start(ctx, t.ID, task.LogFlow, m.now())
	check(err)
	m.running = &l
	m.status = ""
}

func (m *app) cycleSort() {
	switch m.sortCfg.Key {
	case query.KeyPriority:
		m.sortCfg = query.SortConfig{Key: query.KeyDueDate, Direction: query.Asc}
	case query.KeyDueDate:
		m.sortCfg = query.SortConfig{Key: query.KeyCreated, Direction: query.Desc}
	default:
		m.sortCfg = query.SortConfig{Key: query.KeyPriority, Direction: query.Desc}
	}
}

func (m app) sortLabel() string {
	switch m.sortCfg.Key {
	case query.KeyDueDate:
		return "Due Soon"
	case query.KeyCreated:
		return "Newest"
	default:
		return "Priority (High)"
	}
}

// refresh re-reads the whole store and recomputes every derived view.
// Read-after-write consistency comes from calling this after each
// mutation, not from incremental bookkeeping.
func (m *app) refresh() {
	tasks, err := m.store.Tasks(context.Background())
	check(err)
	m.tasks = tasks

	f := tabFilters[m.tabs.Value()]
	f.Search = m.search
	m.visible = query.Apply(m.tasks, f, m.sortCfg)
	m.summary = notify.Evaluate(m.tasks, m.now())
	m.tabs.SetCount(0, query.CountActive(m.tasks))
	m.tabs.Info = m.sortLabel()
}

func (m *app) render() {
	m.viewport.SetContent(m.viewTasks())
}

func (m *app) setCursor(value int) {
	size := len(m.visible)
	m.cursor = clamp(value, 0, max(size-1, 0))
	if size == 0 {
		return
	}
	if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.YOffset = m.cursor - m.viewport.Height + 1
	}
	if m.cursor < m.viewport.YOffset {
		m.viewport.YOffset = m.cursor
	}
}

func (m app) atCursor() *task.Task {
	if len(m.visible) == 0 || m.cursor >= len(m.visible) {
		return nil
	}
	t := m.visible[m.cursor]
	return &t
}

func (m app) viewTasks() string {
	s := ""
	for i, t := range m.visible {
		title := ui.TaskTitle
		if t.Completed() {
			title = ui.DoneTitle
		}
		if i == m.cursor {
			title = title.Copy().Background(ui.Faded)
		}

		badge := ui.PriorityBadge.Copy().
			Foreground(ui.PriorityColor(string(t.Priority))).
			Render("●")
		s += badge
		if t.IsPinned && !t.Completed() {
			s += ui.PinMarker.Render("» ")
		}
		switch {
		case (m.mode == modeRename) && i == m.cursor:
			s += m.titleinput.View()
		default:
			s += title.Render(t.Title)
		}
		if t.EndDate != nil {
			s += ui.TaskDivider
			s += lipgloss.NewStyle().Foreground(m.dateColor(t)).Render(m.formatEnd(*t.EndDate))
		}
		if m.running != nil && m.running.TaskID == t.ID {
			s += ui.TaskTimer.Render(" ⏱ " + m.now().Sub(task.FromMillis(m.running.StartTime)).Round(time.Second).String())
		}
		s += "\n"
	}
	return s
}

func (m app) dateColor(t task.Task) lipgloss.Color {
	if t.Completed() {
		return ui.Faded
	}
	end := task.FromMillis(*t.EndDate)
	switch now := m.now(); {
	case end.Before(now):
		return ui.Red
	case end.Before(now.Add(notify.Window)):
		return ui.Orange
	default:
		return ui.Faded
	}
}

func (m app) formatEnd(ms int64) string {
	return task.FromMillis(ms).Format("2 Jan")
}

func (m app) banner() string {
	if !m.summary.Any() {
		return "\n"
	}
	s := "⚠"
	if n := m.summary.OverdueCount(); n > 0 {
		s += " " + strconv.Itoa(n) + " overdue"
	}
	if n := m.summary.DueSoonCount(); n > 0 {
		s += " " + strconv.Itoa(n) + " due soon"
	}
	return ui.Banner.Render(s) + "\n"
}

func (m app) View() string {
	statusline := ""
	switch m.mode {
	case modeCreate:
		statusline = "new: " + m.titleinput.View()
	case modeDue:
		statusline = m.dateinput.View()
	case modeSearch:
		statusline = m.searchinput.View()
	default:
		statusline = ui.StatusLine.Render(m.status)
	}
	return m.tabs.View() + m.banner() + m.viewport.View() + "\n" + statusline
}

func clamp(v, low, high int) int {
	return min(high, max(low, v))
}
