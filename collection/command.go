package collection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CommandInsert = "insert"
	CommandPatch  = "patch"
	CommandRemove = "remove"
	CommandIndex  = "index"
)

type Command struct {
	Name      string          `json:"name"`
	Uuid      string          `json:"uuid"`
	Timestamp int64           `json:"timestamp"`
	StartByte int64           `json:"start_byte"`
	Payload   json.RawMessage `json:"payload"`
}

func newCommand(name string, payload interface{}) (*Command, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json encode payload: %w", err)
	}

	return &Command{
		Name:      name,
		Uuid:      uuid.New().String(),
		Timestamp: time.Now().UnixNano(),
		StartByte: 0,
		Payload:   data,
	}, nil
}
