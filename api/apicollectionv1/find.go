package apicollectionv1

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptioncrm/collection"
	"github.com/fulldump/inceptioncrm/listview"
	"github.com/fulldump/inceptioncrm/service"
)

type findRequest struct {
	Page      int               `json:"page"`
	PageSize  int               `json:"pageSize"`
	Search    string            `json:"search"`
	Filters   map[string]string `json:"filters"`
	Sort      string            `json:"sort"`
	Direction string            `json:"direction"`
}

type findResponse struct {
	Items      []json.RawMessage    `json:"items"`
	Pagination *listview.Pagination `json:"pagination"`
}

// find answers one page of the collection, the same way a view is fed.
func find(ctx context.Context, input *findRequest) (*findResponse, error) {

	page := max(input.Page, 1)
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = service.DefaultPageSize
	}

	var reverse bool
	switch listview.Direction(input.Direction) {
	case "", listview.Asc:
	case listview.Desc:
		reverse = true
	default:
		return nil, fmt.Errorf("%w: bad direction '%s', must be [asc|desc]", collection.ErrorInvalidPayload, input.Direction)
	}

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")
	col, err := s.GetCollection(collectionName)
	if err != nil {
		return nil, err
	}

	rows, total, err := col.Find(collection.Query{
		Filters: input.Filters,
		Search:  input.Search,
		Sort:    input.Sort,
		Reverse: reverse,
		Skip:    (page - 1) * pageSize,
		Limit:   pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Payload)
	}

	return &findResponse{
		Items:      items,
		Pagination: listview.NewPagination(page, pageSize, total),
	}, nil
}
