package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
)

type JSON = map[string]interface{}

func contact(i int) JSON {
	status := "active"
	if i%5 == 0 {
		status = "lead"
	}
	return JSON{
		"id":     fmt.Sprintf("c%02d", i),
		"name":   fmt.Sprintf("contact %02d", i),
		"status": status,
	}
}

var contactsView = JSON{
	"name":        "contacts",
	"collection":  "contacts",
	"mode":        "paged",
	"view":        "list",
	"multiSelect": true,
	"pageSize":    10,
	"columns": []JSON{
		{"key": "name", "label": "Name", "sortable": true},
		{"key": "status", "label": "Status", "sortable": true, "format": "badge"},
	},
	"card": []string{"name", "status"},
	"filters": []JSON{
		{"key": "status", "placeholder": "Status", "options": []JSON{
			{"value": "active", "label": "Active"},
			{"value": "lead", "label": "Lead"},
		}},
	},
}

func snapshotOf(resp *apitest.Response) JSON {
	return resp.BodyJsonMap()["snapshot"].(JSON)
}

func itemIds(snapshot JSON) []string {
	result := []string{}
	for _, item := range snapshot["items"].([]interface{}) {
		result = append(result, item.(JSON)["id"].(string))
	}
	return result
}

func Acceptance(a *biff.A, apiRequest func(method, path string) *apitest.Request) {

	a.Alternative("Create collection", func(a *biff.A) {
		resp := apiRequest("POST", "/collections").
			WithBodyJson(JSON{
				"name": "contacts",
			}).Do()
		Save(resp, "Create collection", ``)

		biff.AssertEqual(resp.StatusCode, http.StatusCreated)
		expectedBody := JSON{
			"name":    "contacts",
			"total":   0,
			"indexes": 0,
		}
		biff.AssertEqualJson(resp.BodyJson(), expectedBody)

		a.Alternative("Retrieve collection", func(a *biff.A) {
			resp := apiRequest("GET", "/collections/contacts").Do()
			Save(resp, "Retrieve collection", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), expectedBody)
		})

		a.Alternative("List collections", func(a *biff.A) {
			resp := apiRequest("GET", "/collections").Do()
			Save(resp, "List collections", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqualJson(resp.BodyJson(), []JSON{expectedBody})
		})

		a.Alternative("Create collection twice", func(a *biff.A) {
			resp := apiRequest("POST", "/collections").
				WithBodyJson(JSON{"name": "contacts"}).Do()
			Save(resp, "Create collection - conflict", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusConflict)
		})

		a.Alternative("Create collection with an invalid name", func(a *biff.A) {
			resp := apiRequest("POST", "/collections").
				WithBodyJson(JSON{"name": "my contacts"}).Do()

			biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
		})

		a.Alternative("Drop collection", func(a *biff.A) {
			resp := apiRequest("POST", "/collections/contacts:dropCollection").Do()
			Save(resp, "Drop collection", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			a.Alternative("Get dropped collection", func(a *biff.A) {
				resp := apiRequest("GET", "/collections/contacts").Do()
				Save(resp, "Get collection - not found", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})
		})

		a.Alternative("Insert one", func(a *biff.A) {
			anna := JSON{"id": "anna", "name": "Anna", "status": "active"}
			resp := apiRequest("POST", "/collections/contacts:insert").
				WithBodyJson(anna).Do()
			Save(resp, "Insert one", ``)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)
			biff.AssertEqualJson(resp.BodyJson(), anna)

			a.Alternative("Get document", func(a *biff.A) {
				resp := apiRequest("GET", "/collections/contacts/documents/anna").Do()
				Save(resp, "Get document", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), anna)
			})

			a.Alternative("Patch", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:patch").
					WithBodyJson(JSON{
						"id":    "anna",
						"patch": JSON{"status": "lead", "company": "Acme"},
					}).Do()
				Save(resp, "Patch", `
					Applies a JSON merge patch to the document with the given id.
				`)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), JSON{
					"id":      "anna",
					"name":    "Anna",
					"status":  "lead",
					"company": "Acme",
				})
			})

			a.Alternative("Patch the id", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:patch").
					WithBodyJson(JSON{
						"id":    "anna",
						"patch": JSON{"id": "bob"},
					}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Remove", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:remove").
					WithBodyJson(JSON{"id": "anna"}).Do()
				Save(resp, "Remove", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJson(), anna)

				a.Alternative("Remove twice", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/contacts:remove").
						WithBodyJson(JSON{"id": "anna"}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})
			})
		})

		a.Alternative("Insert many", func(a *biff.A) {

			body := ""
			for i := 1; i <= 25; i++ {
				line, _ := json.Marshal(contact(i))
				body += string(line) + "\n"
			}
			resp := apiRequest("POST", "/collections/contacts:insert").
				WithBodyString(body).Do()
			Save(resp, "Insert many", `
				Documents are read as a stream of JSON objects, one stored document is
				answered per line.
			`)

			biff.AssertEqual(resp.StatusCode, http.StatusCreated)

			a.Alternative("Find a page", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:find").
					WithBodyJson(JSON{
						"page":      2,
						"pageSize":  10,
						"sort":      "name",
						"direction": "desc",
					}).Do()
				Save(resp, "Find - page", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				body := resp.BodyJsonMap()
				biff.AssertEqualJson(body["pagination"], JSON{
					"page":            2,
					"pageSize":        10,
					"totalItems":      25,
					"totalPages":      3,
					"hasNextPage":     true,
					"hasPreviousPage": true,
				})
				items := body["items"].([]interface{})
				biff.AssertEqual(len(items), 10)
				biff.AssertEqualJson(items[0], contact(15))
				biff.AssertEqualJson(items[9], contact(6))
			})

			a.Alternative("Find with filters", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:find").
					WithBodyJson(JSON{
						"filters": JSON{"status": "lead"},
					}).Do()
				Save(resp, "Find - filters", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				body := resp.BodyJsonMap()
				biff.AssertEqualJson(body["items"], []JSON{
					contact(5), contact(10), contact(15), contact(20), contact(25),
				})
			})

			a.Alternative("Find with a bad direction", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:find").
					WithBodyJson(JSON{"sort": "name", "direction": "up"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Create index", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:createIndex").
					WithBodyJson(JSON{"field": "id"}).Do()
				Save(resp, "Create index", ``)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				biff.AssertEqualJson(resp.BodyJson(), JSON{"field": "id", "sparse": false})

				a.Alternative("List indexes", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/contacts:listIndexes").Do()
					Save(resp, "List indexes", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(resp.BodyJson(), []JSON{{"field": "id", "sparse": false}})
				})

				a.Alternative("Duplicated id", func(a *biff.A) {
					resp := apiRequest("POST", "/collections/contacts:insert").
						WithBodyJson(contact(1)).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusConflict)
				})
			})

			a.Alternative("Create ordered index", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:createIndex").
					WithBodyJson(JSON{"field": "name", "type": "ordered"}).Do()
				Save(resp, "Create ordered index", `
					An ordered index keeps the records sorted by a field, so finds
					sorted by that field walk the index.
				`)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				biff.AssertEqualJson(resp.BodyJson(), JSON{"field": "name", "sparse": false, "type": "ordered"})

				resp = apiRequest("POST", "/collections/contacts:find").
					WithBodyJson(JSON{"sort": "name", "direction": "desc", "pageSize": 2}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusOK)
				biff.AssertEqualJson(resp.BodyJsonMap()["items"], []JSON{contact(25), contact(24)})
			})

			a.Alternative("Create index of unknown type", func(a *biff.A) {
				resp := apiRequest("POST", "/collections/contacts:createIndex").
					WithBodyJson(JSON{"field": "name", "type": "bitmap"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})

			a.Alternative("Create view", func(a *biff.A) {
				resp := apiRequest("POST", "/views").
					WithBodyJson(JSON{"view": contactsView}).Do()
				Save(resp, "Create view", `
					Opens a live view over a collection. The server keeps the view state
					(page, sort, filters, search, selection) and feeds it from the collection.
				`)

				biff.AssertEqual(resp.StatusCode, http.StatusCreated)
				created := resp.BodyJsonMap()
				viewId := created["id"].(string)
				snapshot := created["snapshot"].(JSON)
				biff.AssertEqual(snapshot["state"], "populated")
				biff.AssertEqual(snapshot["summary"], "Showing 1-10 of 25")
				biff.AssertEqual(len(itemIds(snapshot)), 10)

				viewPath := "/views/" + viewId

				a.Alternative("List views", func(a *biff.A) {
					resp := apiRequest("GET", "/views").Do()
					Save(resp, "List views", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					views := resp.BodyJson().([]interface{})
					biff.AssertEqual(len(views), 1)
					biff.AssertEqual(views[0].(JSON)["id"], viewId)
				})

				a.Alternative("Sort", func(a *biff.A) {
					apiRequest("POST", viewPath+":sort").WithBodyJson(JSON{"key": "name"}).Do()
					resp := apiRequest("POST", viewPath+":sort").WithBodyJson(JSON{"key": "name"}).Do()
					Save(resp, "View - sort", `
						Sorting by the same column twice flips the direction.
					`)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					snapshot := snapshotOf(resp)
					biff.AssertEqualJson(snapshot["sort"], JSON{"key": "name", "direction": "desc"})
					biff.AssertEqual(itemIds(snapshot)[0], "c25")

					a.Alternative("Events", func(a *biff.A) {
						resp := apiRequest("GET", viewPath+":events").Do()
						Save(resp, "View - events", ``)

						biff.AssertEqual(resp.StatusCode, http.StatusOK)
						biff.AssertEqualJson(resp.BodyJson(), []JSON{
							{"type": "sort", "data": JSON{
								"page": 1, "pageSize": 10, "search": "", "filters": JSON{},
								"sort": JSON{"key": "name", "direction": "asc"},
							}},
							{"type": "sort", "data": JSON{
								"page": 1, "pageSize": 10, "search": "", "filters": JSON{},
								"sort": JSON{"key": "name", "direction": "desc"},
							}},
						})
					})
				})

				a.Alternative("Page", func(a *biff.A) {
					resp := apiRequest("POST", viewPath+":page").WithBodyJson(JSON{"page": 3}).Do()
					Save(resp, "View - page", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					snapshot := snapshotOf(resp)
					biff.AssertEqual(itemIds(snapshot), []string{"c21", "c22", "c23", "c24", "c25"})
					biff.AssertEqual(snapshot["summary"], "Showing 21-25 of 25")
				})

				a.Alternative("Filter", func(a *biff.A) {
					resp := apiRequest("POST", viewPath+":filter").
						WithBodyJson(JSON{"key": "status", "value": "lead"}).Do()
					Save(resp, "View - filter", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					snapshot := snapshotOf(resp)
					biff.AssertEqual(itemIds(snapshot), []string{"c05", "c10", "c15", "c20", "c25"})
					biff.AssertEqualJson(snapshot["filters"], JSON{"status": "lead"})
				})

				a.Alternative("Search", func(a *biff.A) {
					apiRequest("POST", viewPath+":search").WithBodyJson(JSON{"term": "Contact 1"}).Do()
					resp := apiRequest("POST", viewPath+":flush").Do()
					Save(resp, "View - search", `
						Search waits for typing to settle. Flush commits the pending term at once.
					`)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					snapshot := snapshotOf(resp)
					biff.AssertEqual(snapshot["search"], "Contact 1")
					biff.AssertEqual(snapshot["summary"], "Showing 1-10 of 10")
				})

				a.Alternative("Selection", func(a *biff.A) {
					resp := apiRequest("POST", viewPath+":toggle").WithBodyJson(JSON{"key": "c03"}).Do()
					Save(resp, "View - toggle", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqualJson(snapshotOf(resp)["selected"], []string{"c03"})
					biff.AssertEqual(snapshotOf(resp)["someSelected"], true)

					a.Alternative("Select all", func(a *biff.A) {
						resp := apiRequest("POST", viewPath+":selectAll").Do()
						Save(resp, "View - select all", ``)

						snapshot := snapshotOf(resp)
						biff.AssertEqual(snapshot["allSelected"], true)
						biff.AssertEqual(len(snapshot["selected"].([]interface{})), 10)

						a.Alternative("Select all again", func(a *biff.A) {
							resp := apiRequest("POST", viewPath+":selectAll").Do()
							biff.AssertEqualJson(snapshotOf(resp)["selected"], []string{})
						})
					})

					a.Alternative("Clear", func(a *biff.A) {
						resp := apiRequest("POST", viewPath+":clear").Do()
						Save(resp, "View - clear selection", ``)

						biff.AssertEqualJson(snapshotOf(resp)["selected"], []string{})
					})

					a.Alternative("Selection survives mode changes", func(a *biff.A) {
						resp := apiRequest("POST", viewPath+":mode").WithBodyJson(JSON{}).Do()
						Save(resp, "View - mode", `
							Without a view the mode toggles between list and grid.
						`)

						snapshot := snapshotOf(resp)
						biff.AssertEqual(snapshot["viewMode"], "grid")
						biff.AssertEqualJson(snapshot["selected"], []string{"c03"})
					})
				})

				a.Alternative("Unknown mode", func(a *biff.A) {
					resp := apiRequest("POST", viewPath+":mode").WithBodyJson(JSON{"view": "table"}).Do()

					biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
				})

				a.Alternative("Render", func(a *biff.A) {
					resp := apiRequest("GET", viewPath+":render").Do()
					Save(resp, "View - render", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertTrue(strings.Contains(resp.BodyString(), "Name"))
					biff.AssertTrue(strings.Contains(resp.BodyString(), "contact 01"))
					biff.AssertTrue(strings.Contains(resp.BodyString(), "Showing 1-10 of 25"))
				})

				a.Alternative("Insert reaches the view", func(a *biff.A) {
					apiRequest("POST", "/collections/contacts:insert").WithBodyJson(contact(26)).Do()

					resp := apiRequest("GET", viewPath).Do()
					Save(resp, "Retrieve view", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)
					biff.AssertEqual(snapshotOf(resp)["summary"], "Showing 1-10 of 26")
				})

				a.Alternative("Close view", func(a *biff.A) {
					resp := apiRequest("POST", viewPath+":close").Do()
					Save(resp, "Close view", ``)

					biff.AssertEqual(resp.StatusCode, http.StatusOK)

					resp = apiRequest("GET", viewPath).Do()
					biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
				})

				a.Alternative("Drop collection closes its views", func(a *biff.A) {
					apiRequest("POST", "/collections/contacts:dropCollection").Do()

					resp := apiRequest("GET", "/views").Do()
					biff.AssertEqualJson(resp.BodyJson(), []JSON{})
				})
			})

			a.Alternative("Create view over a missing collection", func(a *biff.A) {
				resp := apiRequest("POST", "/views").
					WithBodyJson(JSON{"view": contactsView, "collection": "companies"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})

			a.Alternative("Create view from an unknown definition", func(a *biff.A) {
				resp := apiRequest("POST", "/views").
					WithBodyJson(JSON{"definition": "companies"}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
			})

			a.Alternative("Create view without definition", func(a *biff.A) {
				resp := apiRequest("POST", "/views").WithBodyJson(JSON{}).Do()

				biff.AssertEqual(resp.StatusCode, http.StatusBadRequest)
			})
		})
	})

	a.Alternative("Unknown view", func(a *biff.A) {
		resp := apiRequest("GET", "/views/nope").Do()

		biff.AssertEqual(resp.StatusCode, http.StatusNotFound)
	})
}
