package jsonpage

import (
	"github.com/vango-dev/fsroute/pkg/loader"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// API exposes the same document at /json/api/get.
var API = loader.Endpoint{
	Path: "/get",
	Handler: func(res *pipeline.Response) {
		res.Send(sample())
	},
}
