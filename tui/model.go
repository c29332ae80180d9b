// Package tui hosts a list engine in a bubbletea program.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fulldump/inceptioncrm/listview"
)

const eventBuffer = 64

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
)

// eventMsg tells the program the engine changed on its own (a debounced
// search, a page pushed by the feeder).
type eventMsg listview.Event

type Model struct {
	title    string
	engine   *listview.Engine
	viewport listview.Viewport

	keys    keyMap
	help    help.Model
	search  textinput.Model
	spinner spinner.Model

	cursor      int
	events      chan listview.Event
	unsubscribe func()
	quitting    bool
}

func New(title string, engine *listview.Engine, viewport listview.Viewport) *Model {

	search := textinput.New()
	search.Placeholder = "search"
	search.Prompt = "/ "

	m := &Model{
		title:    title,
		engine:   engine,
		viewport: viewport,
		keys:     defaultKeyMap(),
		help:     help.New(),
		search:   search,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		events:   make(chan listview.Event, eventBuffer),
	}

	m.unsubscribe = engine.Subscribe(func(e listview.Event) {
		select {
		case m.events <- e:
		default: // a redraw is already queued
		}
	})

	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent)
}

func (m *Model) waitForEvent() tea.Msg {
	e, ok := <-m.events
	if !ok {
		return nil
	}
	return eventMsg(e)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		if msg.Type.IsFetch() && msg.Type != listview.EventInfiniteScroll {
			m.cursor = 0
		}
		return m, m.waitForEvent

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.search.Focused() {
			return m, m.updateSearch(msg)
		}
		return m, m.updateKeys(msg)
	}

	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Blur) {
		m.search.Blur()
		m.engine.FlushSearch()
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.engine.Search(m.search.Value())
	}
	return cmd
}

func (m *Model) updateKeys(msg tea.KeyMsg) tea.Cmd {

	snapshot := m.engine.Snapshot()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.unsubscribe()
		return tea.Quit

	case key.Matches(msg, m.keys.Sort):
		i := int(msg.String()[0] - '1')
		if i < len(snapshot.Columns) {
			m.engine.Sort(snapshot.Columns[i].Key)
		}

	case key.Matches(msg, m.keys.Previous):
		m.engine.PreviousPage()
		m.cursor = 0

	case key.Matches(msg, m.keys.Next):
		if snapshot.Mode == listview.ModeInfinite {
			m.engine.LoadMore()
		} else {
			m.engine.NextPage()
			m.cursor = 0
		}

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, snapshot.Total)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(+1, snapshot.Total)

	case key.Matches(msg, m.keys.Toggle):
		if e, ok := m.current(snapshot); ok {
			m.engine.Toggle(e.ID)
		}

	case key.Matches(msg, m.keys.SelectAll):
		m.engine.SelectAll()

	case key.Matches(msg, m.keys.Clear):
		m.engine.ClearSelection()

	case key.Matches(msg, m.keys.Mode):
		m.engine.ToggleViewMode()

	case key.Matches(msg, m.keys.Filter):
		m.cycleFilter(snapshot)

	case key.Matches(msg, m.keys.Search):
		return m.search.Focus()
	}

	return nil
}

// moveCursor moves the cursor and scrolls so it stays inside the viewport.
func (m *Model) moveCursor(delta, total int) {
	if total == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), total-1)

	v := m.viewport
	if !v.Enabled() {
		return
	}
	visible := max(v.Height/v.ItemHeight, 1)
	snapshot := m.engine.Snapshot()
	first := snapshot.Offset / v.ItemHeight
	switch {
	case m.cursor < first:
		m.engine.Scroll(m.cursor * v.ItemHeight)
	case m.cursor >= first+visible:
		m.engine.Scroll((m.cursor - visible + 1) * v.ItemHeight)
	}
}

func (m *Model) current(snapshot listview.Snapshot) (listview.Entity, bool) {
	i := m.cursor - snapshot.Start
	if i < 0 || i >= len(snapshot.Items) {
		return listview.Entity{}, false
	}
	return snapshot.Items[i], true
}

// cycleFilter moves the first filter with options to its next value,
// going back to no filter after the last one.
func (m *Model) cycleFilter(snapshot listview.Snapshot) {
	for _, def := range snapshot.FilterDefinitions {
		if len(def.Options) == 0 {
			continue
		}
		values := []string{""}
		for _, option := range def.Options {
			values = append(values, option.Value)
		}
		current := snapshot.Filters[def.Key]
		next := values[0]
		for i, value := range values {
			if value == current {
				next = values[(i+1)%len(values)]
				break
			}
		}
		m.engine.Filter(def.Key, next)
		m.cursor = 0
		return
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	snapshot := m.engine.Snapshot()
	m.cursor = min(m.cursor, max(snapshot.Total-1, 0))

	s := &strings.Builder{}

	s.WriteString(titleStyle.Render(m.title))
	if snapshot.State == listview.StateLoading {
		s.WriteString(" " + m.spinner.View())
	}
	s.WriteString("\n")
	s.WriteString(m.search.View() + "\n")
	s.WriteString(statusStyle.Render(m.status(snapshot)) + "\n\n")
	s.WriteString(m.markCursor(m.engine.Render(), snapshot) + "\n\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

func (m *Model) status(snapshot listview.Snapshot) string {
	parts := []string{string(snapshot.Mode), string(snapshot.ViewMode)}
	if p := snapshot.Pagination; p != nil && snapshot.Mode == listview.ModePaged {
		parts = append(parts, fmt.Sprintf("page %d/%d", p.Page, p.TotalPages))
	}
	for _, def := range snapshot.FilterDefinitions {
		if value := snapshot.Filters[def.Key]; value != "" {
			parts = append(parts, def.Key+"="+value)
		}
	}
	if n := len(snapshot.Selected); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	return strings.Join(parts, " · ")
}

// markCursor points at the cursor row of a list rendering. The first line
// is the header.
func (m *Model) markCursor(rendered string, snapshot listview.Snapshot) string {
	if snapshot.ViewMode != listview.ViewList || snapshot.State != listview.StatePopulated {
		return rendered
	}
	lines := strings.Split(rendered, "\n")
	row := m.cursor - snapshot.Start + 1
	for i := range lines {
		prefix := "  "
		if i == row {
			prefix = "> "
		}
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
