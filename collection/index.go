package collection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/btree"
	"github.com/tidwall/gjson"
)

var (
	ErrorIndexAlreadyExists = errors.New("index already exists")
	ErrorIndexConflict      = errors.New("index conflict")
	ErrorFieldNotIndexed    = errors.New("field is not indexed")
)

const (
	IndexUnique  = "unique"
	IndexOrdered = "ordered"
)

// Index is either a unique index over a dotted path (array values index every
// item) or an ordered index that keeps every row sorted by the value at the path.
type Index struct {
	Entries map[string]*Row
	Ordered *btree.BTreeG[*rowOrdered]
	Options *IndexOptions
}

type IndexOptions struct {
	Field  string `json:"field"`
	Sparse bool   `json:"sparse"`
	Type   string `json:"type,omitempty"`
}

func (o *IndexOptions) validate() error {
	switch o.Type {
	case "", IndexUnique, IndexOrdered:
	default:
		return fmt.Errorf("%w: index type '%s', must be [%s|%s]", ErrorInvalidPayload, o.Type, IndexUnique, IndexOrdered)
	}
	if o.Field == "" {
		return fmt.Errorf("%w: index field is required", ErrorInvalidPayload)
	}
	return nil
}

// rowOrdered is a row in an ordered index. Rows with the same value keep
// insertion order; removals shift positions without changing it.
type rowOrdered struct {
	*Row
	Value string
}

func newOrdered() *btree.BTreeG[*rowOrdered] {
	return btree.NewG(32, func(a, b *rowOrdered) bool {
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.I < b.I
	})
}

func newIndex(options *IndexOptions) *Index {
	if options.Type == IndexOrdered {
		return &Index{
			Ordered: newOrdered(),
			Options: options,
		}
	}
	return &Index{
		Entries: map[string]*Row{},
		Options: options,
	}
}

func (i *Index) keys(row *Row) ([]string, error) {

	field := i.Options.Field
	value := gjson.GetBytes(row.Payload, field)
	if !value.Exists() {
		if i.Options.Sparse {
			// Do not index
			return nil, nil
		}
		return nil, fmt.Errorf("field `%s` is indexed and mandatory", field)
	}

	if !value.IsArray() {
		if value.IsObject() {
			return nil, fmt.Errorf("field `%s`: type not supported", field)
		}
		return []string{value.String()}, nil
	}

	keys := []string{}
	for _, item := range value.Array() {
		if item.IsObject() || item.IsArray() {
			return nil, fmt.Errorf("field `%s`: type not supported", field)
		}
		keys = append(keys, item.String())
	}
	return keys, nil
}

func (i *Index) add(row *Row) error {

	if i.Ordered != nil {
		i.Ordered.ReplaceOrInsert(&rowOrdered{
			Row:   row,
			Value: gjson.GetBytes(row.Payload, i.Options.Field).String(),
		})
		return nil
	}

	keys, err := i.keys(row)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if _, exists := i.Entries[key]; exists {
			return fmt.Errorf("%w: field '%s' with value '%s'", ErrorIndexConflict, i.Options.Field, key)
		}
	}
	for _, key := range keys {
		i.Entries[key] = row
	}

	return nil
}

func (i *Index) remove(row *Row) {
	if i.Ordered != nil {
		i.Ordered.Delete(&rowOrdered{
			Row:   row,
			Value: gjson.GetBytes(row.Payload, i.Options.Field).String(),
		})
		return
	}
	keys, _ := i.keys(row)
	for _, key := range keys {
		if i.Entries[key] == row {
			delete(i.Entries, key)
		}
	}
}

// indexInsert adds row to every index or to none of them.
func indexInsert(indexes map[string]*Index, row *Row) error {
	done := []*Index{}
	for _, index := range indexes {
		err := index.add(row)
		if err != nil {
			for _, d := range done {
				d.remove(row)
			}
			return err
		}
		done = append(done, index)
	}
	return nil
}

func indexRemove(indexes map[string]*Index, row *Row) {
	for _, index := range indexes {
		index.remove(row)
	}
}

// ListIndexes returns the options of every index.
func (c *Collection) ListIndexes() []*IndexOptions {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	result := make([]*IndexOptions, 0, len(c.Indexes))
	for _, index := range c.Indexes {
		result = append(result, index.Options)
	}
	sort.Slice(result, func(a, b int) bool {
		return result[a].Field < result[b].Field
	})
	return result
}
