package listview

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

const DefaultIdentityPath = "id"

// Entity is one record shown by the list. The engine only knows its identity
// and reads everything else from Payload by dotted path.
type Entity struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func NewEntity(identityPath string, payload json.RawMessage) Entity {
	if identityPath == "" {
		identityPath = DefaultIdentityPath
	}
	return Entity{
		ID:      gjson.GetBytes(payload, identityPath).String(),
		Payload: payload,
	}
}

func NewEntities(identityPath string, payloads []json.RawMessage) []Entity {
	entities := make([]Entity, 0, len(payloads))
	for _, payload := range payloads {
		entities = append(entities, NewEntity(identityPath, payload))
	}
	return entities
}

func (e Entity) Get(path string) gjson.Result {
	return gjson.GetBytes(e.Payload, path)
}

// Text returns the value at path as a string, empty if it does not exist.
func (e Entity) Text(path string) string {
	value := e.Get(path)
	if !value.Exists() {
		return ""
	}
	return value.String()
}

func (e Entity) selectable() bool {
	return e.ID != ""
}
