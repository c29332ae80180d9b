package apicollectionv1

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptioncrm/collection"
)

func listIndexes(ctx context.Context) ([]*collection.IndexOptions, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")
	col, err := s.GetCollection(collectionName)
	if err != nil {
		return nil, err
	}

	return col.ListIndexes(), nil
}
