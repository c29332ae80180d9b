package listview

import (
	"errors"
	"fmt"
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// RenderFunc maps an entity to the text of one cell or card. It must be pure.
type RenderFunc func(e Entity) string

type Column struct {
	Key      string     `json:"key"`
	Label    string     `json:"label"`
	Sortable bool       `json:"sortable"`
	Width    int        `json:"width,omitempty"`
	Align    Align      `json:"align,omitempty"`
	Render   RenderFunc `json:"-"`
}

// Cell renders the column for e, falling back to the raw field at Key.
func (c Column) Cell(e Entity) string {
	if c.Render != nil {
		return c.Render(e)
	}
	return e.Text(c.Key)
}

func (c Column) title() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

type Columns []Column

var (
	ErrEmptyColumnKey  = errors.New("empty column key")
	ErrDuplicateColumn = errors.New("duplicated column key")
	ErrInvalidAlign    = errors.New("invalid column align")
)

func (cs Columns) Validate() error {
	seen := map[string]bool{}
	for i, c := range cs {
		if c.Key == "" {
			return fmt.Errorf("column %d: %w", i, ErrEmptyColumnKey)
		}
		if seen[c.Key] {
			return fmt.Errorf("column '%s': %w", c.Key, ErrDuplicateColumn)
		}
		seen[c.Key] = true

		switch c.Align {
		case "", AlignLeft, AlignCenter, AlignRight:
		default:
			return fmt.Errorf("column '%s': %w '%s'", c.Key, ErrInvalidAlign, c.Align)
		}
	}
	return nil
}

func (cs Columns) Find(key string) (Column, bool) {
	for _, c := range cs {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

type FilterOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FilterDefinition describes one filter control offered to the user.
type FilterDefinition struct {
	Key         string         `json:"key" yaml:"key"`
	Placeholder string         `json:"placeholder" yaml:"placeholder"`
	Options     []FilterOption `json:"options" yaml:"options"`
}
