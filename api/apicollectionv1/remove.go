package apicollectionv1

import (
	"context"
	"encoding/json"

	"github.com/fulldump/box"
)

type removeRequest struct {
	Id string `json:"id"`
}

func remove(ctx context.Context, input *removeRequest) (json.RawMessage, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")

	row, err := s.Remove(collectionName, input.Id)
	if err != nil {
		return nil, err
	}

	return row.Payload, nil
}
