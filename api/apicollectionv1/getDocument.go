package apicollectionv1

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptioncrm/collection"
)

func getDocument(ctx context.Context) (json.RawMessage, error) {

	s := GetServicer(ctx)

	collectionName := box.GetUrlParameter(ctx, "collectionName")
	documentID := strings.TrimSpace(box.GetUrlParameter(ctx, "documentId"))
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", collection.ErrorInvalidPayload)
	}

	col, err := s.GetCollection(collectionName)
	if err != nil {
		return nil, err
	}

	row, err := col.Get(documentID)
	if err != nil {
		return nil, err
	}

	return row.Payload, nil
}
