package service

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/inceptioncrm/database"
	"github.com/fulldump/inceptioncrm/listview"
	"github.com/fulldump/inceptioncrm/viewdef"
)

func contactsDefinition(mode string, local bool) *viewdef.Definition {
	return &viewdef.Definition{
		Name:        "contacts",
		Collection:  "contacts",
		Mode:        mode,
		MultiSelect: true,
		PageSize:    10,
		Local:       local,
		Columns: []viewdef.Column{
			{Key: "name", Label: "Name", Sortable: true},
			{Key: "status", Label: "Status", Format: viewdef.FormatBadge},
		},
		Filters: []listview.FilterDefinition{
			{Key: "status", Placeholder: "Status"},
		},
	}
}

func names(items []listview.Entity) []string {
	result := []string{}
	for _, item := range items {
		result = append(result, item.Text("name"))
	}
	return result
}

func newTestService(t *testing.T, contacts int) (*Service, func()) {

	db := database.NewDatabase(&database.Config{Dir: t.TempDir()}, nil)
	AssertNil(db.Load())

	s := NewService(db, nil, DefaultPageSize)

	_, err := s.CreateCollection("contacts")
	AssertNil(err)

	for i := 1; i <= contacts; i++ {
		status := "active"
		if i%5 == 0 {
			status = "lead"
		}
		_, err := s.Insert("contacts", map[string]interface{}{
			"id":     fmt.Sprintf("c%02d", i),
			"name":   fmt.Sprintf("contact %02d", i),
			"status": status,
		})
		AssertNil(err)
	}

	return s, func() {
		s.Close()
		db.Stop()
	}
}

func TestService_PagedView(t *testing.T) {

	Alternative("Paged view over 25 contacts", func(a *A) {
		s, teardown := newTestService(t, 25)
		defer teardown()

		view, err := s.CreateView(contactsDefinition("paged", false))
		AssertNil(err)

		snapshot := view.Engine.Snapshot()
		AssertEqual(snapshot.State, listview.StatePopulated)
		AssertEqual(len(snapshot.Items), 10)
		AssertEqual(snapshot.Pagination.TotalItems, 25)
		AssertEqual(snapshot.Pagination.TotalPages, 3)
		AssertEqual(snapshot.Summary, "Showing 1-10 of 25")

		a.Alternative("Page change", func(a *A) {
			view.Engine.PageChange(3)

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Pagination.Page, 3)
			AssertEqual(names(snapshot.Items), []string{
				"contact 21", "contact 22", "contact 23", "contact 24", "contact 25",
			})
		})

		a.Alternative("Sort descending keeps the page", func(a *A) {
			view.Engine.PageChange(2)
			view.Engine.Sort("name")
			view.Engine.Sort("name")

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Sort, listview.SortState{Key: "name", Direction: listview.Desc})
			AssertEqual(snapshot.Pagination.Page, 2)
			AssertEqual(snapshot.Items[0].Text("name"), "contact 15")
		})

		a.Alternative("Filter goes back to page 1", func(a *A) {
			view.Engine.PageChange(2)
			view.Engine.Filter("status", "lead")

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Pagination.Page, 1)
			AssertEqual(snapshot.Pagination.TotalItems, 5)
			AssertEqual(names(snapshot.Items), []string{
				"contact 05", "contact 10", "contact 15", "contact 20", "contact 25",
			})
		})

		a.Alternative("Search", func(a *A) {
			view.Engine.Search("CONTACT 1")
			AssertTrue(view.Engine.FlushSearch())

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Search, "CONTACT 1")
			AssertEqual(snapshot.Pagination.TotalItems, 10)
		})

		a.Alternative("Insert refreshes the view", func(a *A) {
			_, err := s.Insert("contacts", map[string]interface{}{"name": "contact 26"})
			AssertNil(err)

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Pagination.TotalItems, 26)
		})

		a.Alternative("Remove refreshes the view", func(a *A) {
			row, err := s.Remove("contacts", "c01")
			AssertNil(err)
			AssertEqual(row.ID(), "c01")

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Pagination.TotalItems, 24)
			AssertEqual(snapshot.Items[0].ID, "c02")
		})

		a.Alternative("Patch refreshes the view", func(a *A) {
			_, err := s.Patch("contacts", "c01", map[string]interface{}{"name": "Anna"})
			AssertNil(err)

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Items[0].Text("name"), "Anna")
		})

		a.Alternative("Selection survives page changes", func(a *A) {
			view.Engine.Toggle("c02")
			view.Engine.PageChange(2)
			view.Engine.PageChange(1)

			AssertEqual(view.Engine.Selected(), []string{"c02"})
			AssertTrue(view.Engine.IsSelected("c02"))
		})

		a.Alternative("Events are recorded", func(a *A) {
			view.Engine.PageChange(2)
			view.Engine.Toggle("c11")

			events := view.Events()
			AssertEqual(len(events), 2)
			AssertEqual(events[0].Type, listview.EventPage)
			AssertEqual(events[1].Type, listview.EventSelect)
		})
	})
}

func TestService_InfiniteView(t *testing.T) {

	Alternative("Infinite view over 25 contacts", func(a *A) {
		s, teardown := newTestService(t, 25)
		defer teardown()

		view, err := s.CreateView(contactsDefinition("infinite", false))
		AssertNil(err)
		AssertEqual(view.Engine.Snapshot().Buffered, 10)

		view.Engine.LoadMore()
		AssertEqual(view.Engine.Snapshot().Buffered, 20)

		a.Alternative("Load until the end", func(a *A) {
			view.Engine.LoadMore()
			view.Engine.LoadMore()

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Buffered, 25)
			AssertFalse(snapshot.Pagination.HasNextPage)
		})

		a.Alternative("Insert reloads every page shown", func(a *A) {
			_, err := s.Insert("contacts", map[string]interface{}{"name": "contact 26"})
			AssertNil(err)

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Buffered, 20)
			AssertEqual(snapshot.Pagination.TotalItems, 26)
			AssertEqual(snapshot.Pagination.Page, 2)
		})

		a.Alternative("Filter clears the buffer", func(a *A) {
			view.Engine.Filter("status", "active")

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Buffered, 10)
			AssertEqual(snapshot.Pagination.Page, 1)
			AssertEqual(snapshot.Pagination.TotalItems, 20)
		})
	})
}

func TestService_LocalView(t *testing.T) {

	Alternative("Local view", func(a *A) {
		s, teardown := newTestService(t, 12)
		defer teardown()

		def := contactsDefinition("paged", true)
		def.PageSize = 0
		view, err := s.CreateView(def)
		AssertNil(err)

		snapshot := view.Engine.Snapshot()
		AssertTrue(snapshot.Local)
		AssertEqual(snapshot.Buffered, 12)

		a.Alternative("Search happens locally", func(a *A) {
			view.Engine.Search("contact 1")
			view.Engine.FlushSearch()

			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.Total, 3)
			AssertEqual(names(snapshot.Items), []string{"contact 10", "contact 11", "contact 12"})
		})

		a.Alternative("Insert reloads", func(a *A) {
			s.Insert("contacts", map[string]interface{}{"name": "contact 13"})
			AssertEqual(view.Engine.Snapshot().Buffered, 13)
		})
	})
}

func TestService_Views(t *testing.T) {

	Alternative("Views", func(a *A) {
		s, teardown := newTestService(t, 3)
		defer teardown()

		view, err := s.CreateView(contactsDefinition("paged", false))
		AssertNil(err)

		a.Alternative("Get", func(a *A) {
			found, err := s.GetView(view.Id)
			AssertNil(err)
			AssertEqual(found, view)
			AssertEqual(len(s.ListViews()), 1)
		})

		a.Alternative("Close", func(a *A) {
			AssertNil(s.CloseView(view.Id))

			_, err := s.GetView(view.Id)
			AssertTrue(errors.Is(err, ErrorViewNotFound))
			AssertTrue(errors.Is(s.CloseView(view.Id), ErrorViewNotFound))
			AssertEqual(len(s.ListViews()), 0)
		})

		a.Alternative("Unknown collection", func(a *A) {
			def := contactsDefinition("paged", false)
			def.Collection = "companies"
			_, err := s.CreateView(def)
			AssertTrue(errors.Is(err, ErrorCollectionNotFound))
		})

		a.Alternative("Invalid definition", func(a *A) {
			def := contactsDefinition("sideways", false)
			_, err := s.CreateView(def)
			AssertNotNil(err)
		})

		a.Alternative("Delete collection closes its views", func(a *A) {
			AssertNil(s.DeleteCollection("contacts"))
			AssertEqual(len(s.ListViews()), 0)
			AssertEqual(s.ListCollections(), []string{})
		})

		a.Alternative("New definitions reach live views", func(a *A) {
			def := contactsDefinition("paged", false)
			def.Filters = []listview.FilterDefinition{{Key: "owner", Placeholder: "Owner"}}
			s.SetDefinitions(viewdef.Definitions{"contacts": def})

			found, err := s.Definitions().Get("contacts")
			AssertNil(err)
			AssertEqual(found, def)
			snapshot := view.Engine.Snapshot()
			AssertEqual(snapshot.FilterDefinitions, def.Filters)
		})
	})
}
