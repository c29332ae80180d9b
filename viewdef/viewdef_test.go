package viewdef

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/fulldump/biff"

	"github.com/fulldump/inceptioncrm/listview"
)

const contacts = `
views:
  - name: contacts
    collection: contacts
    mode: infinite
    view: grid
    multiSelect: true
    pageSize: 20
    gridColumns: 4
    viewport:
      itemHeight: 1
      height: 15
      overscan: 2
    columns:
      - key: name
        label: Name
        sortable: true
      - key: status
        label: Status
        format: badge
      - key: createdAt
        label: Created
        format: date
        align: right
    card: [name, company.name]
    filters:
      - key: status
        placeholder: Status
        options:
          - value: active
            label: Active
          - value: lead
            label: Lead
  - name: companies
    collection: companies
    local: true
    columns:
      - key: name
        format: upper
`

func TestParse(t *testing.T) {

	definitions, err := Parse([]byte(contacts))
	AssertNil(err)
	AssertEqual(len(definitions), 2)

	def, err := definitions.Get("contacts")
	AssertNil(err)
	AssertEqual(def.Collection, "contacts")
	AssertEqual(def.Viewport, listview.Viewport{ItemHeight: 1, Height: 15, Overscan: 2})
	AssertEqual(def.Filters[0].Options[1], listview.FilterOption{Value: "lead", Label: "Lead"})

	_, err = definitions.Get("missing")
	AssertTrue(errors.Is(err, ErrorDefinitionNotFound))
}

func TestDefinition_Options(t *testing.T) {

	definitions, _ := Parse([]byte(contacts))

	Alternative("Contacts", func(a *A) {
		options := definitions["contacts"].Options(nil)

		AssertEqual(options.Mode, listview.ModeInfinite)
		AssertEqual(options.ViewMode, listview.ViewGrid)
		AssertTrue(options.MultiSelect)
		AssertEqual(options.GridColumns, 4)
		AssertEqual(options.Columns[2].Align, listview.AlignRight)

		e := listview.NewEntity("id", []byte(`{"id":"1","name":"Anna","status":"active","createdAt":"2024-03-01T10:00:00Z","company":{"name":"Acme"}}`))
		AssertEqual(options.Columns[0].Cell(e), "Anna")
		AssertEqual(options.Columns[1].Cell(e), "[active]")
		AssertEqual(options.Columns[2].Cell(e), "2024-03-01")
		AssertEqual(options.Card(e), "Anna\nAcme")
	})

	Alternative("Defaults", func(a *A) {
		options := definitions["companies"].Options(nil)
		AssertEqual(options.Mode, listview.ModePaged)
		AssertEqual(options.ViewMode, listview.ViewList)
		AssertNil(options.Card)

		e := listview.NewEntity("id", []byte(`{"id":"c1","name":"Acme"}`))
		AssertEqual(options.Columns[0].Cell(e), "ACME")
	})

	Alternative("Builds an engine", func(a *A) {
		engine, err := listview.New(definitions["contacts"].Options(nil))
		AssertNil(err)
		AssertNil(engine.Close())
	})
}

func TestParse_Invalid(t *testing.T) {

	_, err := Parse([]byte("views:\n  - name: x\n"))
	AssertTrue(errors.Is(err, ErrorInvalidDefinition))

	_, err = Parse([]byte("views:\n  - name: x\n    collection: c\n    columns:\n      - key: a\n      - key: a\n"))
	AssertTrue(errors.Is(err, listview.ErrDuplicateColumn))

	_, err = Parse([]byte("views:\n  - name: x\n    collection: c\n    mode: endless\n"))
	AssertTrue(errors.Is(err, listview.ErrInvalidMode))

	_, err = Parse([]byte("views:\n  - name: x\n    collection: c\n    columns:\n      - key: a\n        format: bold\n"))
	AssertTrue(errors.Is(err, ErrorInvalidDefinition))
	AssertTrue(strings.Contains(err.Error(), "must be [badge|date|lower|upper]"))

	_, err = Parse([]byte("views: [\n"))
	AssertNotNil(err)
}

func TestWatch(t *testing.T) {

	dir, _ := os.MkdirTemp("", "viewdef")
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "views.yaml")
	os.WriteFile(filename, []byte(contacts), 0644)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Definitions, 10)
	done := make(chan error)
	go func() {
		done <- Watch(ctx, filename, nil, func(d Definitions) {
			changes <- d
		})
	}()

	// give the watcher some time to start
	time.Sleep(100 * time.Millisecond)

	updated := strings.Replace(contacts, "name: companies", "name: accounts", 1)
	os.WriteFile(filename, []byte(updated), 0644)

	select {
	case d := <-changes:
		_, err := d.Get("accounts")
		AssertNil(err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	AssertNil(<-done)
}
