package apiviewv1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulldump/inceptioncrm/viewdef"
)

// createViewRequest names a loaded definition or carries one inline.
// Collection, when present, points the view to another collection.
type createViewRequest struct {
	Definition string              `json:"definition"`
	Collection string              `json:"collection"`
	View       *viewdef.Definition `json:"view"`
}

func createView(ctx context.Context, w http.ResponseWriter, input *createViewRequest) (*ViewResponse, error) {

	s := GetServicer(ctx)

	var def viewdef.Definition
	switch {
	case input.View != nil:
		def = *input.View
	case input.Definition != "":
		found, err := s.Definitions().Get(input.Definition)
		if err != nil {
			return nil, err
		}
		def = *found
	default:
		return nil, fmt.Errorf("%w: 'definition' or 'view' is required", viewdef.ErrorInvalidDefinition)
	}

	if input.Collection != "" {
		def.Collection = input.Collection
	}

	view, err := s.CreateView(&def)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return newViewResponse(view), nil
}
