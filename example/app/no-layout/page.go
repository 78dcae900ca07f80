package nolayout

import (
	"github.com/vango-dev/fsroute/pkg/markup"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

func document(title string, body ...any) *markup.Node {
	return markup.Fragment(
		markup.Doctype(),
		markup.Html(markup.Lang("en"),
			markup.Head(
				markup.Meta(markup.Charset("utf-8")),
				markup.Title(title),
			),
			markup.Body(body...),
		),
	)
}

// Page renders its own document and opts out of the root layout.
func Page(res *pipeline.Response) {
	res.Send(document("No Layout", markup.Main(markup.H1("No Layout Page"))), pipeline.WithoutLayout())
}
