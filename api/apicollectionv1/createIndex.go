package apicollectionv1

import (
	"context"
	"errors"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptioncrm/collection"
	"github.com/fulldump/inceptioncrm/service"
)

func createIndex(ctx context.Context, w http.ResponseWriter, input *collection.IndexOptions) (*collection.IndexOptions, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")
	col, err := s.GetCollection(collectionName)
	if errors.Is(err, service.ErrorCollectionNotFound) {
		col, err = s.CreateCollection(collectionName)
	}
	if err != nil {
		return nil, err
	}

	err = col.Index(input)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return input, nil
}
