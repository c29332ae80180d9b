package apiviewv1

import (
	"context"
	"time"

	"github.com/fulldump/inceptioncrm/listview"
	"github.com/fulldump/inceptioncrm/service"
)

type ViewResponse struct {
	Id         string            `json:"id"`
	Definition string            `json:"definition"`
	Collection string            `json:"collection"`
	Created    time.Time         `json:"created"`
	Snapshot   listview.Snapshot `json:"snapshot"`
}

func newViewResponse(view *service.View) *ViewResponse {
	return &ViewResponse{
		Id:         view.Id,
		Definition: view.Definition.Name,
		Collection: view.Definition.Collection,
		Created:    view.Created,
		Snapshot:   view.Engine.Snapshot(),
	}
}

func getView(ctx context.Context) (*ViewResponse, error) {
	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}
	return newViewResponse(view), nil
}
