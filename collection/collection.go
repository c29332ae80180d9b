package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// IdentityField holds the record id, assigned on insert when missing.
const IdentityField = "id"

var (
	ErrorCollectionClosed = errors.New("collection is closed")
	ErrorRowNotFound      = errors.New("row not found")
	ErrorInvalidPayload   = errors.New("invalid payload")
)

type Collection struct {
	filename  string // Just informative...
	file      *os.File
	rows      []*Row
	rowsMutex *sync.RWMutex
	Indexes   map[string]*Index
}

type Row struct {
	I       int // position in rows
	Payload json.RawMessage
	text    string
}

func newRow(payload json.RawMessage) *Row {
	row := &Row{}
	row.setPayload(payload)
	return row
}

// setPayload keeps the search text in sync with the payload.
func (r *Row) setPayload(payload json.RawMessage) {
	r.Payload = payload
	r.text = searchText(payload)
}

func (r *Row) ID() string {
	return gjson.GetBytes(r.Payload, IdentityField).String()
}

func OpenCollection(filename string) (*Collection, error) {

	f, err := os.OpenFile(filename, os.O_RDONLY|os.O_CREATE, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for read: %w", err)
	}
	defer f.Close()

	collection := &Collection{
		rows:      []*Row{},
		rowsMutex: &sync.RWMutex{},
		filename:  filename,
		Indexes:   map[string]*Index{},
	}

	j := json.NewDecoder(f)
	for {
		command := &Command{}
		err := j.Decode(&command)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}

		err = collection.replay(command)
		if err != nil {
			return nil, fmt.Errorf("replay %s %s: %w", command.Name, command.Uuid, err)
		}
	}

	// Open file for append only
	collection.file, err = os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("open file for write: %w", err)
	}

	return collection, nil
}

// replay applies one command of the log. It runs before the collection is
// shared, so it does not lock.
func (c *Collection) replay(command *Command) error {
	switch command.Name {
	case CommandInsert:
		_, err := c.addRow(command.Payload)
		return err
	case CommandIndex:
		options := &IndexOptions{}
		err := json.Unmarshal(command.Payload, options)
		if err != nil {
			return err
		}
		return c.indexRows(options)
	case CommandRemove:
		params := &removeParams{}
		err := json.Unmarshal(command.Payload, params)
		if err != nil {
			return err
		}
		row, err := c.rowAt(params.I)
		if err != nil {
			return err
		}
		return c.removeRow(row)
	case CommandPatch:
		params := &patchParams{}
		err := json.Unmarshal(command.Payload, params)
		if err != nil {
			return err
		}
		row, err := c.rowAt(params.I)
		if err != nil {
			return err
		}
		_, err = c.patchRow(row, params.Diff)
		return err
	}
	return fmt.Errorf("unknown command '%s'", command.Name)
}

func (c *Collection) rowAt(i int) (*Row, error) {
	if i < 0 || i >= len(c.rows) {
		return nil, fmt.Errorf("row %d: %w", i, ErrorRowNotFound)
	}
	return c.rows[i], nil
}

func (c *Collection) addRow(payload json.RawMessage) (*Row, error) {

	row := newRow(payload)

	err := indexInsert(c.Indexes, row)
	if err != nil {
		return nil, err
	}

	row.I = len(c.rows)
	c.rows = append(c.rows, row)

	return row, nil
}

func (c *Collection) persist(name string, payload interface{}) error {
	command, err := newCommand(name, payload)
	if err != nil {
		return err
	}

	err = json.NewEncoder(c.file).Encode(command)
	if err != nil {
		return fmt.Errorf("json encode command: %w", err)
	}

	return nil
}

// Insert stores item and returns its row. Items without id get a new uuid.
func (c *Collection) Insert(item interface{}) (*Row, error) {

	payload, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("json encode payload: %w", err)
	}

	if !gjson.ValidBytes(payload) || !gjson.ParseBytes(payload).IsObject() {
		return nil, fmt.Errorf("%w: item must be a json object", ErrorInvalidPayload)
	}

	if !gjson.GetBytes(payload, IdentityField).Exists() {
		payload, err = sjson.SetBytes(payload, IdentityField, uuid.New().String())
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", IdentityField, err)
		}
	}

	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	if c.file == nil {
		return nil, ErrorCollectionClosed
	}

	row, err := c.addRow(payload)
	if err != nil {
		return nil, err
	}

	err = c.persist(CommandInsert, json.RawMessage(payload))
	if err != nil {
		return nil, err
	}

	return row, nil
}

func (c *Collection) Len() int {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()
	return len(c.rows)
}

// Traverse calls f for every row in insertion order until f returns false.
func (c *Collection) Traverse(f func(row *Row) bool) {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	for _, row := range c.rows {
		if !f(row) {
			return
		}
	}
}

// TraverseRange visits rows in [from, to). A non positive to means until the end.
func (c *Collection) TraverseRange(from, to int, f func(row *Row)) {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	if to <= 0 || to > len(c.rows) {
		to = len(c.rows)
	}
	for i := max(from, 0); i < to; i++ {
		f(c.rows[i])
	}
}

// Get returns the row whose id is id.
func (c *Collection) Get(id string) (*Row, error) {
	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	if index, indexed := c.Indexes[IdentityField]; indexed && index.Entries != nil {
		if row, ok := index.Entries[id]; ok {
			return row, nil
		}
	} else {
		for _, row := range c.rows {
			if row.ID() == id {
				return row, nil
			}
		}
	}

	return nil, fmt.Errorf("%s '%s': %w", IdentityField, id, ErrorRowNotFound)
}

func (c *Collection) indexRows(options *IndexOptions) error {

	index := newIndex(options)
	for _, row := range c.rows {
		err := index.add(row)
		if err != nil {
			return fmt.Errorf("index row: %w, data: %s", err, string(row.Payload))
		}
	}
	c.Indexes[options.Field] = index

	return nil
}

// Index creates a unique index on a field.
// Constraints: values can be only scalars or arrays of scalars.
func (c *Collection) Index(options *IndexOptions) error {

	err := options.validate()
	if err != nil {
		return err
	}

	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	if c.file == nil {
		return ErrorCollectionClosed
	}

	if _, exists := c.Indexes[options.Field]; exists {
		return fmt.Errorf("index '%s': %w", options.Field, ErrorIndexAlreadyExists)
	}

	err = c.indexRows(options)
	if err != nil {
		return err
	}

	return c.persist(CommandIndex, options)
}

func (c *Collection) FindByRow(field string, value string) (*Row, error) {

	c.rowsMutex.RLock()
	defer c.rowsMutex.RUnlock()

	index, ok := c.Indexes[field]
	if !ok || index.Entries == nil {
		return nil, fmt.Errorf("field '%s': %w", field, ErrorFieldNotIndexed)
	}

	row, ok := index.Entries[value]
	if !ok {
		return nil, fmt.Errorf("%s '%s': %w", field, value, ErrorRowNotFound)
	}

	return row, nil
}

type removeParams struct {
	I int `json:"i"`
}

func (c *Collection) Remove(row *Row) error {

	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	if c.file == nil {
		return ErrorCollectionClosed
	}

	i := row.I
	err := c.removeRow(row)
	if err != nil {
		return err
	}

	return c.persist(CommandRemove, removeParams{I: i})
}

// removeRow keeps the relative order of the remaining rows.
func (c *Collection) removeRow(row *Row) error {

	i := row.I
	if i < 0 || i >= len(c.rows) || c.rows[i] != row {
		return fmt.Errorf("row %d: %w", i, ErrorRowNotFound)
	}

	indexRemove(c.Indexes, row)

	c.rows = append(c.rows[:i], c.rows[i+1:]...)
	for j := i; j < len(c.rows); j++ {
		c.rows[j].I = j
	}
	row.I = -1

	return nil
}

type patchParams struct {
	I    int             `json:"i"`
	Diff json.RawMessage `json:"diff"`
}

// Patch applies a json merge patch to row. The identity field can not change.
func (c *Collection) Patch(row *Row, patch interface{}) error {

	patchBytes, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}

	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	if c.file == nil {
		return ErrorCollectionClosed
	}

	if row.I < 0 || row.I >= len(c.rows) || c.rows[row.I] != row {
		return fmt.Errorf("row %d: %w", row.I, ErrorRowNotFound)
	}

	id := gjson.GetBytes(patchBytes, IdentityField)
	if id.Exists() && id.String() != row.ID() {
		return fmt.Errorf("%w: field '%s' can not be patched", ErrorInvalidPayload, IdentityField)
	}

	diff, err := c.patchRow(row, patchBytes)
	if err != nil {
		return err
	}

	return c.persist(CommandPatch, patchParams{I: row.I, Diff: diff})
}

func (c *Collection) patchRow(row *Row, patch []byte) (json.RawMessage, error) {

	newPayload, err := jsonpatch.MergePatch(row.Payload, patch)
	if err != nil {
		return nil, fmt.Errorf("cannot apply patch: %w", err)
	}

	diff, err := jsonpatch.CreateMergePatch(row.Payload, newPayload)
	if err != nil {
		return nil, fmt.Errorf("cannot diff: %w", err)
	}

	oldPayload := row.Payload
	indexRemove(c.Indexes, row)

	row.setPayload(newPayload)

	err = indexInsert(c.Indexes, row)
	if err != nil {
		row.setPayload(oldPayload)
		indexInsert(c.Indexes, row)
		return nil, fmt.Errorf("index: %w", err)
	}

	return diff, nil
}

func (c *Collection) Close() error {
	c.rowsMutex.Lock()
	defer c.rowsMutex.Unlock()

	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}

func (c *Collection) Drop() error {
	err := c.Close()
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	err = os.Remove(c.filename)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	return nil
}
