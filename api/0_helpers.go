package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptioncrm/collection"
	"github.com/fulldump/inceptioncrm/database"
	"github.com/fulldump/inceptioncrm/listview"
	"github.com/fulldump/inceptioncrm/service"
	"github.com/fulldump/inceptioncrm/viewdef"
)

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

func InterceptorUnavailable(db *database.Database) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := db.GetStatus()
			if status == database.StatusOpening {
				box.SetError(ctx, fmt.Errorf("%w: opening", ErrUnavailable))
				return
			}
			if status == database.StatusClosing {
				box.SetError(ctx, fmt.Errorf("%w: closing", ErrUnavailable))
				return
			}
			next(ctx)
		}
	}
}

var ErrUnavailable = errors.New("temporary unavailable")

type errorClass struct {
	status      int
	description string
	errors      []error
}

// errorClasses maps domain errors to http statuses, first match wins.
var errorClasses = []errorClass{
	{http.StatusNotFound, "not found", []error{
		service.ErrorCollectionNotFound,
		service.ErrorViewNotFound,
		collection.ErrorRowNotFound,
		viewdef.ErrorDefinitionNotFound,
	}},
	{http.StatusConflict, "conflict", []error{
		service.ErrorCollectionAlreadyExists,
		collection.ErrorIndexAlreadyExists,
		collection.ErrorIndexConflict,
	}},
	{http.StatusBadRequest, "bad request", []error{
		database.ErrorInvalidCollectionName,
		collection.ErrorInvalidPayload,
		viewdef.ErrorInvalidDefinition,
		listview.ErrInvalidMode,
		listview.ErrInvalidViewMode,
		listview.ErrDuplicateColumn,
		listview.ErrEmptyColumnKey,
		listview.ErrInvalidAlign,
		io.EOF,
		io.ErrUnexpectedEOF,
	}},
	{http.StatusServiceUnavailable, "try again later", []error{
		ErrUnavailable,
	}},
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		if err == box.ErrResourceNotFound {
			w.WriteHeader(http.StatusNotFound)
			PrettyError{
				Message:     err.Error(),
				Description: fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String()),
			}.MarshalTo(w)
			return
		}

		if err == box.ErrMethodNotAllowed {
			w.WriteHeader(http.StatusMethodNotAllowed)
			PrettyError{
				Message:     err.Error(),
				Description: fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method),
			}.MarshalTo(w)
			return
		}

		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		if errors.As(err, &syntaxError) || errors.As(err, &typeError) {
			w.WriteHeader(http.StatusBadRequest)
			PrettyError{
				Message:     err.Error(),
				Description: "Malformed JSON",
			}.MarshalTo(w)
			return
		}

		for _, class := range errorClasses {
			for _, target := range class.errors {
				if errors.Is(err, target) {
					w.WriteHeader(class.status)
					PrettyError{
						Message:     err.Error(),
						Description: class.description,
					}.MarshalTo(w)
					return
				}
			}
		}

		w.WriteHeader(http.StatusInternalServerError)
		PrettyError{
			Message:     err.Error(),
			Description: "Unexpected error",
		}.MarshalTo(w)
	}
}
