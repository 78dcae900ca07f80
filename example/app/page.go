package app

import (
	"github.com/vango-dev/fsroute/pkg/markup"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// Page is the home page.
func Page(res *pipeline.Response) {
	res.Send(markup.Main(
		markup.H1("Home Page"),
		markup.Ul(
			markup.Li(markup.A(markup.Href("/json"), "JSON")),
			markup.Li(markup.A(markup.Href("/streaming"), "Streaming")),
			markup.Li(markup.A(markup.Href("/error"), "Error")),
			markup.Li(markup.A(markup.Href("/no-layout"), "No layout")),
			markup.Li(markup.A(markup.Href("/nested"), "Nested")),
		),
	))
}
