package nolayout

import (
	"context"

	"github.com/vango-dev/fsroute/example/app/streaming"
	"github.com/vango-dev/fsroute/pkg/loader"
	"github.com/vango-dev/fsroute/pkg/markup"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// API holds one complete document and one stream.
var API = []*loader.Endpoint{
	{
		Path: "/one",
		Handler: func(res *pipeline.Response) {
			res.Send(document("No Layout", markup.Main(
				markup.H1("No Layout API"),
				markup.P("/no-layout/api/one"),
			)))
		},
	},
	{
		Path: "/many",
		Handler: func(ctx context.Context, st *pipeline.Stream) error {
			if err := st.Write(markup.Div(markup.H1("No Layout API"), markup.P("/no-layout/api/many"))); err != nil {
				return err
			}
			return streaming.Chunks(ctx, st, streaming.Interval, "Content 1", "Content 2", "Content 3", "Content 4", "Content 5")
		},
	},
}
