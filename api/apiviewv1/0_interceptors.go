package apiviewv1

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptioncrm/service"
)

type servicerKey struct{}

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, servicerKey{}, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	s, _ := ctx.Value(servicerKey{}).(service.Servicer)
	return s
}

func currentView(ctx context.Context) (*service.View, error) {
	return GetServicer(ctx).GetView(box.GetUrlParameter(ctx, "viewId"))
}
