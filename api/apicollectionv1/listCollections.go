package apicollectionv1

import (
	"context"
)

func listCollections(ctx context.Context) ([]*CollectionResponse, error) {

	s := GetServicer(ctx)

	result := []*CollectionResponse{}
	for _, name := range s.ListCollections() {
		col, err := s.GetCollection(name)
		if err != nil {
			continue // dropped meanwhile
		}
		result = append(result, newCollectionResponse(name, col))
	}

	return result, nil
}
