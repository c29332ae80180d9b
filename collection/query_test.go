package collection

import (
	"encoding/json"
	"errors"
	"testing"

	. "github.com/fulldump/biff"
)

func ids(rows []*Row) []string {
	result := []string{}
	for _, row := range rows {
		result = append(result, row.ID())
	}
	return result
}

func TestFind(t *testing.T) {
	Environment(func(filename string) {

		c, _ := OpenCollection(filename)
		defer c.Close()

		c.Insert(map[string]interface{}{"id": "1", "name": "Anna Smith", "status": "active", "company": map[string]interface{}{"name": "Acme"}})
		c.Insert(map[string]interface{}{"id": "2", "name": "Bob", "status": "inactive"})
		c.Insert(map[string]interface{}{"id": "3", "name": "Joanna", "status": "active", "company": map[string]interface{}{"name": "Initech"}})
		c.Insert(map[string]interface{}{"id": "4", "name": "Carl", "status": "active", "company": map[string]interface{}{"name": "Acme"}})
		c.Insert(map[string]interface{}{"id": "5", "name": "Dave", "status": "inactive", "score": 7})

		Alternative("Everything", func(a *A) {
			rows, total, err := c.Find(Query{})
			AssertNil(err)
			AssertEqual(total, 5)
			AssertEqual(ids(rows), []string{"1", "2", "3", "4", "5"})
		})

		Alternative("Filter", func(a *A) {
			rows, total, _ := c.Find(Query{Filters: map[string]string{"status": "active"}})
			AssertEqual(total, 3)
			AssertEqual(ids(rows), []string{"1", "3", "4"})
		})

		Alternative("Filter by nested path and number", func(a *A) {
			rows, _, _ := c.Find(Query{Filters: map[string]string{"company.name": "Acme", "status": "active"}})
			AssertEqual(ids(rows), []string{"1", "4"})

			rows, _, _ = c.Find(Query{Filters: map[string]string{"score": "7"}})
			AssertEqual(ids(rows), []string{"5"})
		})

		Alternative("Empty filter values are ignored", func(a *A) {
			_, total, _ := c.Find(Query{Filters: map[string]string{"status": ""}})
			AssertEqual(total, 5)
		})

		Alternative("Search", func(a *A) {
			rows, total, _ := c.Find(Query{Search: "ANNA"})
			AssertEqual(total, 2)
			AssertEqual(ids(rows), []string{"1", "3"})
		})

		Alternative("Sort", func(a *A) {
			rows, _, _ := c.Find(Query{Sort: "name"})
			AssertEqual(ids(rows), []string{"1", "2", "4", "5", "3"})
		})

		Alternative("Sort reverse keeps ties in insertion order", func(a *A) {
			rows, _, _ := c.Find(Query{Sort: "status", Reverse: true})
			AssertEqual(ids(rows), []string{"2", "5", "1", "3", "4"})
		})

		Alternative("Skip and limit", func(a *A) {
			rows, total, _ := c.Find(Query{Sort: "name", Skip: 2, Limit: 2})
			AssertEqual(total, 5)
			AssertEqual(ids(rows), []string{"4", "5"})

			rows, _, _ = c.Find(Query{Skip: 4, Limit: 10})
			AssertEqual(ids(rows), []string{"5"})

			rows, _, _ = c.Find(Query{Skip: 10, Limit: 10})
			AssertEqual(ids(rows), []string{})
		})

		Alternative("Search matches escaped payloads", func(a *A) {
			_, err := c.Insert(json.RawMessage(`{"id":"6","name":"\u0041lice"}`))
			AssertNil(err)

			rows, total, _ := c.Find(Query{Search: "alice"})
			AssertEqual(total, 1)
			AssertEqual(ids(rows), []string{"6"})
		})

		Alternative("Ordered index", func(a *A) {
			AssertNil(c.Index(&IndexOptions{Field: "name", Type: IndexOrdered}))
			AssertNil(c.Index(&IndexOptions{Field: "status", Type: IndexOrdered}))
			AssertEqual(c.Indexes["name"].Ordered.Len(), 5)

			a.Alternative("Sorts like a plain find", func(a *A) {
				rows, _, _ := c.Find(Query{Sort: "name"})
				AssertEqual(ids(rows), []string{"1", "2", "4", "5", "3"})

				rows, _, _ = c.Find(Query{Sort: "status", Reverse: true})
				AssertEqual(ids(rows), []string{"2", "5", "1", "3", "4"})

				rows, total, _ := c.Find(Query{Sort: "name", Filters: map[string]string{"status": "active"}, Skip: 1})
				AssertEqual(total, 3)
				AssertEqual(ids(rows), []string{"4", "3"})
			})

			a.Alternative("Follows patches and removes", func(a *A) {
				bob, _ := c.Get("2")
				AssertNil(c.Patch(bob, map[string]interface{}{"name": "Zed"}))
				anna, _ := c.Get("1")
				AssertNil(c.Remove(anna))
				c.Insert(map[string]interface{}{"id": "6", "name": "Bea"})

				rows, _, _ := c.Find(Query{Sort: "name"})
				AssertEqual(ids(rows), []string{"6", "4", "5", "3", "2"})
				AssertEqual(c.Indexes["name"].Ordered.Len(), 5)
			})

			a.Alternative("Survives reopening", func(a *A) {
				c.Close()
				reopened, err := OpenCollection(filename)
				AssertNil(err)
				defer reopened.Close()

				AssertNotNil(reopened.Indexes["name"].Ordered)
				rows, _, _ := reopened.Find(Query{Sort: "name", Reverse: true})
				AssertEqual(ids(rows), []string{"3", "5", "4", "2", "1"})
			})

			a.Alternative("Unique lookups ignore it", func(a *A) {
				_, err := c.FindByRow("name", "Bob")
				AssertTrue(errors.Is(err, ErrorFieldNotIndexed))
			})
		})

		Alternative("Unknown index type", func(a *A) {
			err := c.Index(&IndexOptions{Field: "name", Type: "bitmap"})
			AssertTrue(errors.Is(err, ErrorInvalidPayload))
		})

		Alternative("Reverse without sort", func(a *A) {
			rows, _, _ := c.Find(Query{Reverse: true, Limit: 2})
			AssertEqual(ids(rows), []string{"5", "4"})
		})
	})
}
