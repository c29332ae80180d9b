package collection

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/SierraSoftworks/connor"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tidwall/gjson"
)

// Query selects rows: exact filters on dotted paths, a case insensitive
// search over the whole payload, an optional sort field and a skip/limit window.
type Query struct {
	Filters map[string]string `json:"filters"`
	Search  string            `json:"search"`
	Sort    string            `json:"sort"`
	Reverse bool              `json:"reverse"`
	Skip    int               `json:"skip"`
	Limit   int               `json:"limit"`
}

// Find returns the rows matching q in the window [Skip, Skip+Limit) and the
// number of matching rows. A non positive Limit means no limit. Sorting walks
// the ordered index of the field when there is one.
func (c *Collection) Find(q Query) ([]*Row, int, error) {

	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	matcher := newMatcher(q.Filters)
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	matching := []*Row{}
	for _, row := range c.rows {
		if needle != "" && !strings.Contains(row.text, needle) {
			continue
		}
		match, err := matcher.match(row)
		if err != nil {
			return nil, 0, err
		}
		if !match {
			continue
		}
		matching = append(matching, row)
	}

	total := len(matching)
	result := make([]*Row, 0, min(max(q.Limit, 0), total))

	skip := max(q.Skip, 0)
	limit := q.Limit
	visit := func(row *Row) bool {
		if limit > 0 && len(result) >= limit {
			return false
		}
		if skip > 0 {
			skip--
			return true
		}
		result = append(result, row)
		return true
	}

	if q.Sort == "" {
		if q.Reverse {
			for i := len(matching) - 1; i >= 0; i-- {
				if !visit(matching[i]) {
					break
				}
			}
		} else {
			for _, row := range matching {
				if !visit(row) {
					break
				}
			}
		}
		return result, total, nil
	}

	sorted := c.sortedBy(q.Sort, matching, total == len(c.rows))

	if !q.Reverse {
		for _, r := range sorted {
			if !visit(r.Row) {
				break
			}
		}
		return result, total, nil
	}

	// descending values, equal values keep insertion order
	for end := len(sorted); end > 0; {
		start := end - 1
		for start > 0 && sorted[start-1].Value == sorted[end-1].Value {
			start--
		}
		for _, r := range sorted[start:end] {
			if !visit(r.Row) {
				return result, total, nil
			}
		}
		end = start
	}

	return result, total, nil
}

// sortedBy returns rows ascending by the value at field.
func (c *Collection) sortedBy(field string, rows []*Row, all bool) []*rowOrdered {

	sorted := make([]*rowOrdered, 0, len(rows))

	if index, ok := c.Indexes[field]; ok && index.Ordered != nil {
		var selected map[*Row]bool
		if !all {
			selected = make(map[*Row]bool, len(rows))
			for _, row := range rows {
				selected[row] = true
			}
		}
		index.Ordered.Ascend(func(r *rowOrdered) bool {
			if all || selected[r.Row] {
				sorted = append(sorted, r)
			}
			return true
		})
		return sorted
	}

	ordered := newOrdered()
	for _, row := range rows {
		ordered.ReplaceOrInsert(&rowOrdered{
			Row:   row,
			Value: gjson.GetBytes(row.Payload, field).String(),
		})
	}
	ordered.Ascend(func(r *rowOrdered) bool {
		sorted = append(sorted, r)
		return true
	})
	return sorted
}

// searchText is the lowercase canonical JSON of a payload, so escaped and
// unescaped payloads match the same terms.
func searchText(payload json.RawMessage) string {
	value := jsontext.Value(slices.Clone(payload))
	if err := value.Canonicalize(); err != nil {
		return strings.ToLower(string(payload))
	}
	return strings.ToLower(string(value))
}

type matcher struct {
	conditions map[string]interface{}
	paths      map[string]string
}

// newMatcher renames dotted paths to plain keys so connor compares the
// stringified values instead of resolving paths by itself.
func newMatcher(filters map[string]string) *matcher {
	m := &matcher{
		conditions: map[string]interface{}{},
		paths:      map[string]string{},
	}
	i := 0
	for path, value := range filters {
		if value == "" {
			continue
		}
		key := "f" + strconv.Itoa(i)
		m.conditions[key] = value
		m.paths[key] = path
		i++
	}
	return m
}

func (m *matcher) match(row *Row) (bool, error) {
	if len(m.conditions) == 0 {
		return true, nil
	}

	data := make(map[string]interface{}, len(m.paths))
	for key, path := range m.paths {
		data[key] = gjson.GetBytes(row.Payload, path).String()
	}

	return connor.Match(m.conditions, data)
}
