package apiviewv1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptioncrm/listview"
)

// Every action answers the view as it is right after the action. Fetches
// triggered by the action are already pushed by then, except a search that
// is still waiting for its delay (see flush).

type searchRequest struct {
	Term string `json:"term"`
}

func search(ctx context.Context, input *searchRequest) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.Search(input.Term)
		return nil
	})
}

func flush(ctx context.Context) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.FlushSearch()
		return nil
	})
}

type filterRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func filter(ctx context.Context, input *filterRequest) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.Filter(input.Key, input.Value)
		return nil
	})
}

type sortRequest struct {
	Key string `json:"key"`
}

func sort(ctx context.Context, input *sortRequest) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.Sort(input.Key)
		return nil
	})
}

type pageRequest struct {
	Page int `json:"page"`
}

func page(ctx context.Context, input *pageRequest) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.PageChange(input.Page)
		return nil
	})
}

type scrollRequest struct {
	Offset int `json:"offset"`
}

func scroll(ctx context.Context, input *scrollRequest) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.Scroll(input.Offset)
		return nil
	})
}

func loadMore(ctx context.Context) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.LoadMore()
		return nil
	})
}

type toggleRequest struct {
	Key string `json:"key"`
}

func toggle(ctx context.Context, input *toggleRequest) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.Toggle(input.Key)
		return nil
	})
}

func selectAll(ctx context.Context) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.SelectAll()
		return nil
	})
}

func clearSelection(ctx context.Context) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		e.ClearSelection()
		return nil
	})
}

type modeRequest struct {
	View listview.ViewMode `json:"view"`
}

// mode switches between list and grid. An empty view toggles.
func mode(ctx context.Context, input *modeRequest) (*ViewResponse, error) {
	return apply(ctx, func(e *listview.Engine) error {
		if input.View == "" {
			e.ToggleViewMode()
			return nil
		}
		return e.SetViewMode(input.View)
	})
}

func closeView(ctx context.Context) error {
	return GetServicer(ctx).CloseView(box.GetUrlParameter(ctx, "viewId"))
}

func events(ctx context.Context) ([]listview.Event, error) {
	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}
	return view.Events(), nil
}

func render(ctx context.Context, w http.ResponseWriter) error {
	view, err := currentView(ctx)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err = w.Write([]byte(view.Engine.Render() + "\n"))
	return err
}

func apply(ctx context.Context, f func(e *listview.Engine) error) (*ViewResponse, error) {
	view, err := currentView(ctx)
	if err != nil {
		return nil, err
	}
	err = f(view.Engine)
	if err != nil {
		return nil, err
	}
	return newViewResponse(view), nil
}
