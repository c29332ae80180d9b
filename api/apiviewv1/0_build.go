package apiviewv1

import (
	"github.com/fulldump/box"
)

func BuildV1View(v1 *box.R) *box.R {

	views := v1.Resource("/views").
		WithActions(
			box.Get(listViews),
			box.Post(createView),
		)

	v1.Resource("/views/{viewId}").
		WithActions(
			box.Get(getView),
			box.Action(render),
			box.Action(events),
			box.ActionPost(search),
			box.ActionPost(flush),
			box.ActionPost(filter),
			box.ActionPost(sort),
			box.ActionPost(page),
			box.ActionPost(scroll),
			box.ActionPost(loadMore),
			box.ActionPost(toggle),
			box.ActionPost(selectAll),
			box.ActionPost(clearSelection).WithName("clear"),
			box.ActionPost(mode),
			box.ActionPost(closeView).WithName("close"),
		)

	return views
}
