package tui

import (
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/fulldump/biff"

	"github.com/fulldump/inceptioncrm/listview"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel() (*Model, *listview.Engine) {

	engine, err := listview.New(listview.Options{
		Columns: listview.Columns{
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "status", Label: "Status", Sortable: true},
		},
		MultiSelect: true,
	})
	AssertNil(err)

	engine.SetFilterDefinitions([]listview.FilterDefinition{
		{Key: "status", Options: []listview.FilterOption{
			{Value: "active", Label: "Active"},
			{Value: "lead", Label: "Lead"},
		}},
	})
	engine.Load(listview.NewEntities("id", []json.RawMessage{
		json.RawMessage(`{"id":"1","name":"Anna","status":"active"}`),
		json.RawMessage(`{"id":"2","name":"Bob","status":"lead"}`),
		json.RawMessage(`{"id":"3","name":"Carl","status":"active"}`),
	}), nil)

	return New("contacts", engine, listview.Viewport{}), engine
}

func TestModel(t *testing.T) {

	Alternative("Model", func(a *A) {
		m, engine := newTestModel()
		defer engine.Close()

		a.Alternative("Sort with number keys", func(a *A) {
			m.Update(runes("2"))
			AssertEqual(engine.Snapshot().Sort, listview.SortState{Key: "status", Direction: listview.Asc})

			m.Update(runes("9"))
			AssertEqual(engine.Snapshot().Sort.Key, "status")
		})

		a.Alternative("Toggle the row under the cursor", func(a *A) {
			m.Update(tea.KeyMsg{Type: tea.KeyDown})
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			AssertEqual(engine.Selected(), []string{"2"})

			view := m.View()
			AssertTrue(strings.Contains(view, "> [x] Bob"))
		})

		a.Alternative("Cursor stays inside the list", func(a *A) {
			m.Update(tea.KeyMsg{Type: tea.KeyUp})
			m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			AssertEqual(engine.Selected(), []string{"1"})
		})

		a.Alternative("Select all and clear", func(a *A) {
			m.Update(runes("a"))
			AssertEqual(engine.Selected(), []string{"1", "2", "3"})

			m.Update(runes("c"))
			AssertEqual(engine.Selected(), []string{})
		})

		a.Alternative("Grid", func(a *A) {
			m.Update(runes("g"))
			AssertEqual(engine.Snapshot().ViewMode, listview.ViewGrid)
		})

		a.Alternative("Filter cycle", func(a *A) {
			m.Update(runes("f"))
			AssertEqual(engine.Snapshot().Filters, map[string]string{"status": "active"})

			m.Update(runes("f"))
			AssertEqual(engine.Snapshot().Filters, map[string]string{"status": "lead"})

			m.Update(runes("f"))
			AssertEqual(engine.Snapshot().Filters, map[string]string{})
		})

		a.Alternative("Search", func(a *A) {
			m.Update(runes("/"))
			m.Update(runes("b"))
			m.Update(runes("o"))
			AssertEqual(engine.Snapshot().Search, "")

			m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			snapshot := engine.Snapshot()
			AssertEqual(snapshot.Search, "bo")
			AssertEqual(snapshot.Total, 1)
		})

		a.Alternative("Keys are text while searching", func(a *A) {
			m.Update(runes("/"))
			m.Update(runes("q"))
			AssertFalse(m.quitting)
		})

		a.Alternative("Quit", func(a *A) {
			_, cmd := m.Update(runes("q"))
			AssertTrue(m.quitting)
			AssertEqual(cmd(), tea.QuitMsg{})
			AssertEqual(m.View(), "")
		})

		a.Alternative("Status line", func(a *A) {
			m.Update(runes("f"))
			m.Update(runes("a"))
			view := m.View()
			AssertTrue(strings.Contains(view, "contacts"))
			AssertTrue(strings.Contains(view, "status=active"))
			AssertTrue(strings.Contains(view, "2 selected"))
		})
	})
}
