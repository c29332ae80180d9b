package apicollectionv1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptioncrm/service"
)

// insert reads a stream of JSON objects and answers one stored document per
// line. The collection is created on first insert.
func insert(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")
	_, err := s.GetCollection(collectionName)
	if errors.Is(err, service.ErrorCollectionNotFound) {
		_, err = s.CreateCollection(collectionName)
	}
	if err != nil {
		return err
	}

	jsonReader := json.NewDecoder(r.Body)
	jsonWriter := json.NewEncoder(w)

	for i := 0; true; i++ {
		item := map[string]any{}
		err := jsonReader.Decode(&item)
		if err == io.EOF {
			if i == 0 {
				w.WriteHeader(http.StatusNoContent)
			}
			return nil
		}
		if err != nil {
			if i == 0 {
				return err
			}
			return fmt.Errorf("item %d: %w", i, err)
		}

		row, err := s.Insert(collectionName, item)
		if err != nil {
			if i == 0 {
				return err
			}
			return fmt.Errorf("item %d: %w", i, err)
		}

		if i == 0 {
			w.WriteHeader(http.StatusCreated)
		}
		jsonWriter.Encode(row.Payload)
	}

	return nil
}
