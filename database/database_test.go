package database

import (
	"errors"
	"os"
	"testing"

	. "github.com/fulldump/biff"
)

func TestDatabase(t *testing.T) {

	dir, err := os.MkdirTemp("", "inceptioncrm-database-*")
	AssertNil(err)
	defer os.RemoveAll(dir)

	db := NewDatabase(&Config{Dir: dir}, nil)
	AssertNil(db.Load())
	AssertEqual(db.GetStatus(), StatusOperating)

	Alternative("Create collection", func(a *A) {
		col, err := db.CreateCollection("contacts")
		AssertNil(err)
		AssertNotNil(col)
		AssertEqual(db.ListCollections(), []string{"contacts"})

		Alternative("Create it again", func(a *A) {
			_, err := db.CreateCollection("contacts")
			AssertTrue(errors.Is(err, ErrorCollectionAlreadyExists))
		})

		Alternative("Get it", func(a *A) {
			found, err := db.GetCollection("contacts")
			AssertNil(err)
			AssertTrue(found == col)
		})

		Alternative("Drop it", func(a *A) {
			AssertNil(db.DropCollection("contacts"))
			AssertEqual(db.ListCollections(), []string{})

			_, err := os.Stat(dir + "/contacts")
			AssertTrue(errors.Is(err, os.ErrNotExist))
		})

		Alternative("Reload from disk", func(a *A) {
			_, err := col.Insert(map[string]any{"id": "c01", "name": "Anna"})
			AssertNil(err)
			AssertNil(db.Stop())

			reloaded := NewDatabase(&Config{Dir: dir}, nil)
			AssertNil(reloaded.Load())
			defer reloaded.Stop()

			found, err := reloaded.GetCollection("contacts")
			AssertNil(err)
			AssertEqual(found.Len(), 1)
		})
	})

	Alternative("Invalid name", func(a *A) {
		_, err := db.CreateCollection("../contacts")
		AssertTrue(errors.Is(err, ErrorInvalidCollectionName))
	})

	Alternative("Missing collection", func(a *A) {
		_, err := db.GetCollection("leads")
		AssertTrue(errors.Is(err, ErrorCollectionNotFound))

		err = db.DropCollection("leads")
		AssertTrue(errors.Is(err, ErrorCollectionNotFound))
	})
}
