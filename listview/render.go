package listview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewGrid ViewMode = "grid"
)

func (m ViewMode) Validate() error {
	switch m {
	case ViewList, ViewGrid:
		return nil
	}
	return fmt.Errorf("%w '%s'", ErrInvalidViewMode, m)
}

type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StatePopulated State = "populated"
	StateEmpty     State = "empty"
)

// CardFunc renders one entity as a grid card. It must be pure.
type CardFunc func(e Entity) string

type Styles struct {
	Header       lipgloss.Style
	Row          lipgloss.Style
	Selected     lipgloss.Style
	Card         lipgloss.Style
	SelectedCard lipgloss.Style
	Muted        lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:       lipgloss.NewStyle().Bold(true),
		Row:          lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Card:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		SelectedCard: lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

const (
	DefaultGridColumns = 3
	defaultCardWidth   = 24
	maxColumnWidth     = 40

	LoadingText = "Loading..."
	EmptyText   = "No results"
)

// Frame is everything the renderer needs for one invocation.
type Frame struct {
	State    State
	Mode     ViewMode
	Entities []Entity
	Selected func(e Entity) bool
	Sort     SortState
	Summary  string
}

type Renderer struct {
	Columns     Columns
	Card        CardFunc
	GridColumns int
	Styles      Styles
}

// Render produces the text for the frame. Column and card render functions
// are called as they are: if one panics, the panic reaches the caller.
func (r *Renderer) Render(f Frame) string {
	switch f.State {
	case StateIdle:
		return ""
	case StateLoading:
		return r.Styles.Muted.Render(LoadingText)
	case StateEmpty:
		return r.Styles.Muted.Render(EmptyText)
	}

	selected := f.Selected
	if selected == nil {
		selected = func(Entity) bool { return false }
	}

	var body string
	if f.Mode == ViewGrid {
		body = r.renderGrid(f.Entities, selected)
	} else {
		body = r.renderList(f.Entities, selected, f.Sort)
	}

	if f.Summary != "" {
		body += "\n" + r.Styles.Muted.Render(f.Summary)
	}
	return body
}

func (r *Renderer) renderList(entities []Entity, selected func(Entity) bool, sort SortState) string {

	cells := make([][]string, len(entities))
	for i, e := range entities {
		row := make([]string, len(r.Columns))
		for j, c := range r.Columns {
			row[j] = singleLine(c.Cell(e))
		}
		cells[i] = row
	}

	headers := make([]string, len(r.Columns))
	for j, c := range r.Columns {
		headers[j] = c.title() + sortIndicator(c, sort)
	}

	widths := make([]int, len(r.Columns))
	for j, c := range r.Columns {
		if c.Width > 0 {
			widths[j] = c.Width
			continue
		}
		widths[j] = lipgloss.Width(headers[j])
		for _, row := range cells {
			widths[j] = max(widths[j], lipgloss.Width(row[j]))
		}
		widths[j] = min(widths[j], maxColumnWidth)
	}

	lines := make([]string, 0, len(entities)+1)
	lines = append(lines, r.Styles.Header.Render("    "+r.joinCells(headers, widths)))
	for i, e := range entities {
		marker := "[ ] "
		style := r.Styles.Row
		if selected(e) {
			marker = "[x] "
			style = r.Styles.Selected
		}
		lines = append(lines, style.Render(marker+r.joinCells(cells[i], widths)))
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) joinCells(values []string, widths []int) string {
	parts := make([]string, len(values))
	for j, value := range values {
		parts[j] = lipgloss.NewStyle().
			Inline(true).
			Width(widths[j]).
			MaxWidth(widths[j]).
			Align(position(r.Columns[j].Align)).
			Render(value)
	}
	return strings.Join(parts, "  ")
}

func (r *Renderer) renderGrid(entities []Entity, selected func(Entity) bool) string {

	perRow := r.GridColumns
	if perRow < 1 {
		perRow = DefaultGridColumns
	}

	cards := make([]string, len(entities))
	for i, e := range entities {
		text := r.cardText(e)
		style := r.Styles.Card
		marker := "[ ]"
		if selected(e) {
			style = r.Styles.SelectedCard
			marker = "[x]"
		}
		cards[i] = style.Width(defaultCardWidth).Render(marker + " " + text)
	}

	rows := []string{}
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}

	return strings.Join(rows, "\n")
}

func (r *Renderer) cardText(e Entity) string {
	if r.Card != nil {
		return r.Card(e)
	}

	lines := make([]string, 0, len(r.Columns))
	for _, c := range r.Columns {
		lines = append(lines, c.title()+": "+singleLine(c.Cell(e)))
	}
	return strings.Join(lines, "\n")
}

func sortIndicator(c Column, sort SortState) string {
	if !c.Sortable || sort.Key != c.Key {
		return ""
	}
	if sort.Direction == Desc {
		return " ▼"
	}
	return " ▲"
}

func position(a Align) lipgloss.Position {
	switch a {
	case AlignCenter:
		return lipgloss.Center
	case AlignRight:
		return lipgloss.Right
	}
	return lipgloss.Left
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
