package fsroute

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/fsroute/pkg/pipeline"
	"github.com/vango-dev/fsroute/pkg/ratelimit"
	"github.com/vango-dev/fsroute/pkg/static"
)

// Option customizes an App beyond what config.Config describes.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	routesFS       fs.FS
	staticSource   static.Source
	store          ratelimit.Store
	registry       *prometheus.Registry
	spanProcessors []sdktrace.SpanProcessor
	middleware     []func(http.Handler) http.Handler
	observers      []pipeline.Observer
	negotiator     *pipeline.Negotiator
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRoutesFS compiles routes from fsys instead of the configured
// directory. Useful with embed.FS and in tests.
func WithRoutesFS(fsys fs.FS) Option {
	return func(o *options) {
		o.routesFS = fsys
	}
}

// WithStaticSource serves /public assets from src instead of the configured
// directory or bucket.
func WithStaticSource(src static.Source) Option {
	return func(o *options) {
		o.staticSource = src
	}
}

// WithRateLimitStore overrides the rate limit store selected by
// configuration.
func WithRateLimitStore(s ratelimit.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithRegistry registers metrics with reg and exposes it on the metrics
// path. Default: a fresh registry per App.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithSpanProcessor adds a span processor (an exporter pipeline) to the
// tracer provider created when tracing is enabled.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) {
		o.spanProcessors = append(o.spanProcessors, sp)
	}
}

// WithMiddleware appends middleware that runs after the built-in chain and
// before route dispatch.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(o *options) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithObserver adds a pipeline observer next to the metrics collector.
func WithObserver(obs pipeline.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithNegotiator replaces the default content negotiator.
func WithNegotiator(n *pipeline.Negotiator) Option {
	return func(o *options) {
		o.negotiator = n
	}
}

// observers fans events out to several observers.
type observers []pipeline.Observer

func (obs observers) Observe(e pipeline.Event) {
	for _, o := range obs {
		o.Observe(e)
	}
}
