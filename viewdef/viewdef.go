// Package viewdef reads list view definitions from YAML and turns them into
// listview options.
package viewdef

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fulldump/inceptioncrm/listview"
	"github.com/fulldump/inceptioncrm/utils"
)

var (
	ErrorDefinitionNotFound = errors.New("view definition not found")
	ErrorInvalidDefinition  = errors.New("invalid view definition")
)

const (
	FormatUpper = "upper"
	FormatLower = "lower"
	FormatDate  = "date"
	FormatBadge = "badge"
)

type Column struct {
	Key      string `yaml:"key" json:"key"`
	Label    string `yaml:"label" json:"label"`
	Sortable bool   `yaml:"sortable" json:"sortable"`
	Width    int    `yaml:"width" json:"width"`
	Align    string `yaml:"align" json:"align"`
	Format   string `yaml:"format" json:"format"`
}

type Definition struct {
	Name        string                      `yaml:"name" json:"name"`
	Collection  string                      `yaml:"collection" json:"collection"`
	Identity    string                      `yaml:"identity" json:"identity"`
	Mode        string                      `yaml:"mode" json:"mode"`
	View        string                      `yaml:"view" json:"view"`
	MultiSelect bool                        `yaml:"multiSelect" json:"multiSelect"`
	PageSize    int                         `yaml:"pageSize" json:"pageSize"`
	Local       bool                        `yaml:"local" json:"local"`
	GridColumns int                         `yaml:"gridColumns" json:"gridColumns"`
	Threshold   int                         `yaml:"threshold" json:"threshold"`
	Viewport    listview.Viewport           `yaml:"viewport" json:"viewport"`
	Columns     []Column                    `yaml:"columns" json:"columns"`
	Card        []string                    `yaml:"card" json:"card"`
	Filters     []listview.FilterDefinition `yaml:"filters" json:"filters"`
}

type file struct {
	Views []*Definition `yaml:"views"`
}

// Definitions indexed by name.
type Definitions map[string]*Definition

func (d Definitions) Get(name string) (*Definition, error) {
	def, ok := d[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrorDefinitionNotFound, name)
	}
	return def, nil
}

func Parse(data []byte) (Definitions, error) {

	f := &file{}
	err := yaml.Unmarshal(data, f)
	if err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	result := Definitions{}
	for i, def := range f.Views {
		if def == nil {
			continue
		}
		err := def.Validate()
		if err != nil {
			return nil, fmt.Errorf("view %d: %w", i, err)
		}
		if _, exists := result[def.Name]; exists {
			return nil, fmt.Errorf("%w: view '%s' defined twice", ErrorInvalidDefinition, def.Name)
		}
		result[def.Name] = def
	}

	return result, nil
}

func Load(filename string) (Definitions, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrorInvalidDefinition)
	}
	if d.Collection == "" {
		return fmt.Errorf("%w: view '%s' needs a collection", ErrorInvalidDefinition, d.Name)
	}
	for _, c := range d.Columns {
		if _, known := formats[c.Format]; c.Format != "" && !known {
			return fmt.Errorf("%w: column '%s' has unknown format '%s', must be [%s]",
				ErrorInvalidDefinition, c.Key, c.Format, strings.Join(utils.GetKeys(formats), "|"))
		}
	}

	// columns and modes are checked the same way the engine does
	options := d.Options(nil)
	if err := options.Columns.Validate(); err != nil {
		return fmt.Errorf("view '%s': %w", d.Name, err)
	}
	if err := options.Mode.Validate(); err != nil {
		return fmt.Errorf("view '%s': %w", d.Name, err)
	}
	if err := options.ViewMode.Validate(); err != nil {
		return fmt.Errorf("view '%s': %w", d.Name, err)
	}

	return nil
}

func (d *Definition) Options(logger *zap.Logger) listview.Options {

	columns := make(listview.Columns, 0, len(d.Columns))
	for _, c := range d.Columns {
		columns = append(columns, listview.Column{
			Key:      c.Key,
			Label:    c.Label,
			Sortable: c.Sortable,
			Width:    c.Width,
			Align:    listview.Align(c.Align),
			Render:   formatter(c.Key, c.Format),
		})
	}

	mode := listview.Mode(d.Mode)
	if mode == "" {
		mode = listview.ModePaged
	}
	view := listview.ViewMode(d.View)
	if view == "" {
		view = listview.ViewList
	}

	options := listview.Options{
		Columns:      columns,
		IdentityPath: d.Identity,
		MultiSelect:  d.MultiSelect,
		Mode:         mode,
		ViewMode:     view,
		PageSize:     d.PageSize,
		GridColumns:  d.GridColumns,
		Viewport:     d.Viewport,
		Threshold:    d.Threshold,
		Logger:       logger,
	}
	if len(d.Card) > 0 {
		options.Card = card(d.Card)
	}

	return options
}

// formats build the render function of a column from its key.
var formats = map[string]func(key string) listview.RenderFunc{
	FormatUpper: func(key string) listview.RenderFunc {
		return func(e listview.Entity) string {
			return strings.ToUpper(e.Text(key))
		}
	},
	FormatLower: func(key string) listview.RenderFunc {
		return func(e listview.Entity) string {
			return strings.ToLower(e.Text(key))
		}
	},
	FormatDate: func(key string) listview.RenderFunc {
		return func(e listview.Entity) string {
			value := e.Text(key)
			t, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return value
			}
			return t.Format(time.DateOnly)
		}
	},
	FormatBadge: func(key string) listview.RenderFunc {
		return func(e listview.Entity) string {
			value := e.Text(key)
			if value == "" {
				return ""
			}
			return "[" + value + "]"
		}
	},
}

func formatter(key, format string) listview.RenderFunc {
	build, ok := formats[format]
	if !ok {
		return nil
	}
	return build(key)
}

func card(keys []string) listview.CardFunc {
	return func(e listview.Entity) string {
		lines := make([]string, 0, len(keys))
		for _, key := range keys {
			if value := e.Text(key); value != "" {
				lines = append(lines, value)
			}
		}
		return strings.Join(lines, "\n")
	}
}
