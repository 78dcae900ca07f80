package app

import (
	"context"

	"github.com/vango-dev/fsroute/pkg/loader"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// API is served under /api.
var API = []loader.Endpoint{
	{
		Path:   "/get",
		Method: "GET",
		Handler: func(res *pipeline.Response) {
			res.Send("GET /api/get")
		},
	},
	{
		Path:   "/add",
		Method: "POST",
		Handler: func(_ context.Context, res *pipeline.Response) error {
			return res.Send("POST /api/add", pipeline.WithStatus(201))
		},
	},
	{
		Path:   "/update/:id",
		Method: "PUT",
		Handler: func(res *pipeline.Response) {
			res.Send("PUT /api/update/" + res.Param("id"))
		},
	},
	{
		Path:   "/delete/:id",
		Method: "DELETE",
		Handler: func(res *pipeline.Response) {
			res.Send("DELETE /api/delete/" + res.Param("id"))
		},
	},
}
