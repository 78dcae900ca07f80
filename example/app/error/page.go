package errorpage

import (
	"context"
	"math/rand/v2"

	"github.com/vango-dev/fsroute/pkg/markup"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// Fail decides whether a request fails. Half of them do.
var Fail = func() bool { return rand.IntN(2) == 0 }

// Page answers 400 or the page, at random.
func Page(_ context.Context, res *pipeline.Response) error {
	if Fail() {
		return res.Error(map[string]string{"message": "An error occurred!"})
	}
	return res.Send(markup.Main(
		markup.H1("Error Page"),
		markup.P("No error, congrats!"),
	))
}
