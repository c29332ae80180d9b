package api

import (
	"context"
	"net/http"

	"github.com/fulldump/box"
	"github.com/fulldump/box/boxopenapi"

	"github.com/fulldump/inceptioncrm/api/apicollectionv1"
	"github.com/fulldump/inceptioncrm/api/apiviewv1"
	"github.com/fulldump/inceptioncrm/service"
	"github.com/fulldump/inceptioncrm/statics"
)

func Build(s service.Servicer, staticsDir, version string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	v1.WithInterceptors(
		box.SetResponseHeader("Content-Type", "application/json"),
		injectServicer(s),
	)

	apicollectionv1.BuildV1Collection(v1)
	apiviewv1.BuildV1View(v1)

	b.Resource("/v1/*").
		WithActions(box.AnyMethod(func(w http.ResponseWriter) interface{} {
			w.WriteHeader(http.StatusNotImplemented)
			return PrettyError{
				Message:     "not implemented",
				Description: "this endpoint does not exist, please check /openapi.json",
			}
		}))

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}))

	spec := boxopenapi.Spec(b)
	spec.Info.Title = "InceptionCRM"
	spec.Info.Description = "Contacts store with live, server fed list views."
	spec.Info.Contact = &boxopenapi.Contact{
		Url: "https://github.com/fulldump/inceptioncrm/issues/new",
	}
	b.Handle("GET", "/openapi.json", func(r *http.Request) any {

		spec.Servers = []boxopenapi.Server{
			{
				Url: "https://" + r.Host,
			},
			{
				Url: "http://" + r.Host,
			},
		}

		return spec
	})

	// Mount statics
	b.Resource("/*").
		WithActions(
			box.Get(statics.ServeStatics(staticsDir)).WithName("serveStatics"),
		)

	return b
}

func injectServicer(s service.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			ctx = apicollectionv1.SetServicer(ctx, s)
			ctx = apiviewv1.SetServicer(ctx, s)
			next(ctx)
		}
	}
}
