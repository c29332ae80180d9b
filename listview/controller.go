package listview

import (
	"slices"
	"strings"
	"time"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortState struct {
	Key       string    `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

func (s SortState) IsEmpty() bool {
	return s.Key == ""
}

// Controller owns sort, filter and search state. In local mode it also
// computes the transformed view; with server pagination it only keeps state.
type Controller struct {
	columns  Columns
	sort     SortState
	filters  map[string]string
	search   string
	debounce *Debouncer
}

func NewController(columns Columns, searchDelay time.Duration, scheduler Scheduler) *Controller {
	return &Controller{
		columns:  columns,
		filters:  map[string]string{},
		debounce: NewDebouncer(searchDelay, scheduler),
	}
}

// SetSort flips the direction when key is already the sort key, otherwise it
// sorts ascending by key. Unknown or non sortable columns are ignored.
func (c *Controller) SetSort(key string) bool {
	column, ok := c.columns.Find(key)
	if !ok || !column.Sortable {
		return false
	}

	if c.sort.Key == key {
		if c.sort.Direction == Asc {
			c.sort.Direction = Desc
		} else {
			c.sort.Direction = Asc
		}
		return true
	}

	c.sort = SortState{Key: key, Direction: Asc}
	return true
}

func (c *Controller) Sort() SortState {
	return c.sort
}

// SetSearchTerm calls commit with the latest term once typing stops.
func (c *Controller) SetSearchTerm(term string, commit func(term string)) {
	c.debounce.Debounce(func() {
		commit(term)
	})
}

// CommitSearch stores term and reports whether it changed.
func (c *Controller) CommitSearch(term string) bool {
	term = strings.TrimSpace(term)
	if term == c.search {
		return false
	}
	c.search = term
	return true
}

func (c *Controller) Search() string {
	return c.search
}

func (c *Controller) FlushSearch() bool {
	return c.debounce.Flush()
}

func (c *Controller) SearchPending() bool {
	return c.debounce.Pending()
}

// SetFilter sets the constraint for key. An empty value removes it.
func (c *Controller) SetFilter(key, value string) bool {
	current, exists := c.filters[key]
	if value == "" {
		if !exists {
			return false
		}
		delete(c.filters, key)
		return true
	}
	if exists && current == value {
		return false
	}
	c.filters[key] = value
	return true
}

func (c *Controller) Filters() map[string]string {
	filters := make(map[string]string, len(c.filters))
	for k, v := range c.filters {
		filters[k] = v
	}
	return filters
}

// Apply returns the entities to display. Only local collections are
// transformed: once the server paginates, its content and order are final.
func (c *Controller) Apply(items []Entity, local bool) []Entity {
	if !local {
		return items
	}

	needle := strings.ToLower(c.search)
	result := make([]Entity, 0, len(items))
	for _, e := range items {
		if !matchFilters(e, c.filters) {
			continue
		}
		if needle != "" && !strings.Contains(searchText(e), needle) {
			continue
		}
		result = append(result, e)
	}

	if column, ok := c.columns.Find(c.sort.Key); ok {
		sortEntities(result, column, c.sort.Direction)
	}

	return result
}

func (c *Controller) Close() {
	c.debounce.Cancel()
}

// sortEntities orders by the displayed cell, so rendered columns sort by
// what they show.
func sortEntities(items []Entity, column Column, direction Direction) {
	slices.SortStableFunc(items, func(a, b Entity) int {
		cmp := strings.Compare(column.Cell(a), column.Cell(b))
		if direction == Desc {
			return -cmp
		}
		return cmp
	})
}
