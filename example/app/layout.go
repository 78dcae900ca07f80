package app

import (
	"context"
	"net/http"

	"github.com/vango-dev/fsroute/pkg/markup"
)

var renderer = markup.NewRenderer(markup.RendererConfig{})

// Layout wraps every text page below the root in the HTML shell.
func Layout(_ context.Context, page string, _ *http.Request) (string, error) {
	doc := markup.Fragment(
		markup.Doctype(),
		markup.Html(markup.Lang("en"),
			markup.Head(
				markup.Meta(markup.Charset("utf-8")),
				markup.Meta(markup.Name("viewport"), markup.Content("width=device-width, initial-scale=1.0")),
				markup.Title("Root Layout"),
				markup.Link(markup.Rel("stylesheet"), markup.Href("/public/style.css")),
			),
			markup.Body(
				markup.Div(markup.ID("app"), markup.Raw(page)),
			),
		),
	)
	return renderer.Render(doc)
}
