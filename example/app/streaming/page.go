package streaming

import (
	"context"
	"time"

	"github.com/vango-dev/fsroute/pkg/markup"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// Interval between chunks.
var Interval = time.Second

// Page writes a heading, then one chunk per Interval.
func Page(ctx context.Context, st *pipeline.Stream) error {
	if err := st.Write(markup.Div(markup.H1("Streaming Page"))); err != nil {
		return err
	}
	return Chunks(ctx, st, Interval, "Content 1", "Content 2", "Content 3", "Content 4", "Content 5")
}

// Chunks writes each item as a paragraph, waiting interval before each one,
// then ends the stream. It stops early when ctx is done.
func Chunks(ctx context.Context, st *pipeline.Stream, interval time.Duration, items ...string) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for _, s := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := st.Write(markup.Div(markup.P(s))); err != nil {
			return err
		}
	}
	return st.End()
}
