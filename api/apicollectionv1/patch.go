package apicollectionv1

import (
	"context"
	"encoding/json"

	"github.com/fulldump/box"
)

type patchRequest struct {
	Id    string      `json:"id"`
	Patch interface{} `json:"patch"`
}

func patch(ctx context.Context, input *patchRequest) (json.RawMessage, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")

	row, err := s.Patch(collectionName, input.Id, input.Patch)
	if err != nil {
		return nil, err
	}

	return row.Payload, nil
}
