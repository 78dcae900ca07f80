package nested

import (
	"github.com/vango-dev/fsroute/pkg/markup"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

func Page(res *pipeline.Response) {
	res.Send(markup.Main(markup.H1("Nested Page")))
}
