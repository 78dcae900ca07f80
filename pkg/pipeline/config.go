package pipeline

import (
	"log/slog"

	"github.com/vango-dev/fsroute/pkg/markup"
)

// Config is shared, read-only, by every request of one route.
type Config struct {
	// Route is the route pattern, used in logs and events.
	Route string

	// Layout composes successful text responses. Nil disables composition.
	Layout Layout

	// Negotiator converts payloads. Defaults to markup rendering plus JSON.
	Negotiator *Negotiator

	// Logger receives misuse warnings and recovered failures.
	Logger *slog.Logger

	// Observer receives pipeline events.
	Observer Observer
}

var defaultNegotiator = &Negotiator{
	Renderer:   markup.NewRenderer(markup.RendererConfig{}),
	Serializer: JSONSerializer{},
}

// DefaultNegotiator returns the negotiator used when Config.Negotiator is nil.
func DefaultNegotiator() *Negotiator {
	return defaultNegotiator
}

func (c *Config) negotiator() *Negotiator {
	if c == nil || c.Negotiator == nil {
		return defaultNegotiator
	}
	return c.Negotiator
}

func (c *Config) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Config) observer() Observer {
	if c == nil || c.Observer == nil {
		return nopObserver{}
	}
	return c.Observer
}

func (c *Config) route() string {
	if c == nil {
		return ""
	}
	return c.Route
}

func (c *Config) layout() Layout {
	if c == nil {
		return nil
	}
	return c.Layout
}
