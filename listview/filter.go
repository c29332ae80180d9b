package listview

import (
	"slices"
	"strconv"
	"strings"

	"github.com/SierraSoftworks/connor"
	"github.com/go-json-experiment/json/jsontext"
)

// matchFilters compares the stringified field of every filter key with its
// value. Keys are dotted paths, so they are renamed before handing them to
// connor, which would otherwise try to resolve them itself.
func matchFilters(e Entity, filters map[string]string) bool {
	if len(filters) == 0 {
		return true
	}

	conditions := make(map[string]interface{}, len(filters))
	data := make(map[string]interface{}, len(filters))
	i := 0
	for key, value := range filters {
		if value == "" {
			continue
		}
		name := "f" + strconv.Itoa(i)
		conditions[name] = value
		data[name] = e.Text(key)
		i++
	}

	match, err := connor.Match(conditions, data)
	if err != nil {
		for key, value := range filters {
			if value != "" && e.Text(key) != value {
				return false
			}
		}
		return true
	}

	return match
}

// searchText is the lowercase canonical JSON of the entity, so escaped and
// unescaped payloads match the same terms.
func searchText(e Entity) string {
	value := jsontext.Value(slices.Clone(e.Payload))
	if err := value.Canonicalize(); err != nil {
		return strings.ToLower(string(e.Payload))
	}
	return strings.ToLower(string(value))
}
