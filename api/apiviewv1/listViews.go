package apiviewv1

import (
	"context"
	"time"
)

type listViewsItem struct {
	Id         string    `json:"id"`
	Definition string    `json:"definition"`
	Collection string    `json:"collection"`
	Created    time.Time `json:"created"`
}

func listViews(ctx context.Context) []*listViewsItem {

	result := []*listViewsItem{}
	for _, view := range GetServicer(ctx).ListViews() {
		result = append(result, &listViewsItem{
			Id:         view.Id,
			Definition: view.Definition.Name,
			Collection: view.Definition.Collection,
			Created:    view.Created,
		})
	}

	return result
}
