// Package jsonpage serves structured data. Non-markup payloads are serialized
// as JSON and never get the layout.
package jsonpage

import (
	"context"

	"github.com/vango-dev/fsroute/pkg/pipeline"
)

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type document struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     struct {
		Message string `json:"message"`
		Items   []item `json:"items"`
	} `json:"content"`
}

func sample() document {
	var d document
	d.Title = "JSON Page"
	d.Description = "This is a JSON page."
	d.Content.Message = "Hello, world!"
	d.Content.Items = []item{{1, "Item 1"}, {2, "Item 2"}, {3, "Item 3"}}
	return d
}

// Page sends the sample document.
func Page(_ context.Context, res *pipeline.Response) error {
	return res.Send(sample())
}
