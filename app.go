package fsroute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/pkg/loader"
	"github.com/vango-dev/fsroute/pkg/middleware"
	"github.com/vango-dev/fsroute/pkg/ratelimit"
	"github.com/vango-dev/fsroute/pkg/ratelimit/postgres"
	"github.com/vango-dev/fsroute/pkg/router"
	"github.com/vango-dev/fsroute/pkg/static"
)

// =============================================================================
// App Type
// =============================================================================

// App is a compiled fsroute server. It is an http.Handler.
//
// Create an App with fsroute.New:
//
//	app, err := fsroute.New(ctx, cfg, routes.Modules())
//	http.ListenAndServe(cfg.Addr(), app)
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	table   *router.RouteTable
	handler http.Handler

	metrics  *middleware.Metrics
	registry *prometheus.Registry
	store    ratelimit.Store
	limiter  *ratelimit.Limiter
	tracer   *sdktrace.TracerProvider
	proxies  []netip.Prefix

	closers []func(context.Context) error
}

// New compiles the routes tree and assembles the middleware chain. The
// context bounds connecting to external stores. Close releases them; Run
// does so on shutdown.
func New(ctx context.Context, cfg *config.Config, modules loader.Loader, opts ...Option) (*App, error) {
	if cfg == nil {
		def := config.Defaults()
		cfg = &def
	}
	if modules == nil {
		return nil, errors.New("fsroute: nil module loader")
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	proxies, err := cfg.Server.TrustedPrefixes()
	if err != nil {
		return nil, fmt.Errorf("fsroute: server.trusted_proxies: %w", err)
	}
	a := &App{
		cfg:     cfg,
		logger:  logger,
		proxies: proxies,
	}

	obs := observers(o.observers)
	if cfg.Metrics.Enabled {
		a.registry = o.registry
		if a.registry == nil {
			a.registry = prometheus.NewRegistry()
			a.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		a.metrics = middleware.NewMetrics(middleware.WithRegistry(a.registry))
		obs = append(obs, a.metrics)
	}

	routesFS := o.routesFS
	if routesFS == nil {
		routesFS = os.DirFS(cfg.Routes.Dir)
	}
	compileOpts := []router.CompileOption{router.WithLogger(logger)}
	if len(obs) > 0 {
		compileOpts = append(compileOpts, router.WithObserver(obs))
	}
	if o.negotiator != nil {
		compileOpts = append(compileOpts, router.WithNegotiator(o.negotiator))
	}
	table, err := router.Compile(routesFS, modules, compileOpts...)
	if err != nil {
		return nil, err
	}
	a.table = table

	if cfg.RateLimit.Enabled {
		if err := a.openStore(ctx, o.store); err != nil {
			return nil, err
		}
	}

	if cfg.Tracing.Enabled {
		tpOpts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRatio))),
		}
		for _, sp := range o.spanProcessors {
			tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
		}
		a.tracer = sdktrace.NewTracerProvider(tpOpts...)
		a.closers = append(a.closers, a.tracer.Shutdown)
	}

	var src static.Source
	if cfg.Static.Enabled {
		src = o.staticSource
		if src == nil {
			src = newStaticSource(cfg.Static)
		}
	}

	a.handler = a.buildRouter(src, o.middleware)

	logger.Info("routes compiled",
		"routes", table.Len(),
		"dir", cfg.Routes.Dir,
		"rate_limit", cfg.RateLimit.Enabled,
		"metrics", cfg.Metrics.Enabled,
		"tracing", cfg.Tracing.Enabled,
	)
	return a, nil
}

// openStore selects the rate limit store: the override, postgres when a DSN
// is configured, or memory.
func (a *App) openStore(ctx context.Context, override ratelimit.Store) error {
	switch {
	case override != nil:
		a.store = override
	case a.cfg.RateLimit.DB != "":
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:            a.cfg.RateLimit.DB,
			MigrateOnStart: true,
		})
		if err != nil {
			return fmt.Errorf("opening rate limit store: %w", err)
		}
		a.store = pg
		a.closers = append(a.closers, func(context.Context) error { return pg.Close() })
	default:
		a.store = ratelimit.NewMemoryStore()
	}
	return nil
}

func newStaticSource(cfg config.StaticConfig) static.Source {
	if cfg.S3.Bucket != "" {
		client := static.NewS3Client(static.S3Config{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			UsePathStyle:    cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		return static.NewS3Source(client, cfg.S3.Bucket, cfg.S3.KeyPrefix)
	}
	return static.NewDirSource(os.DirFS(cfg.Dir))
}

// =============================================================================
// Router Assembly
// =============================================================================

func (a *App) buildRouter(src static.Source, extra []func(http.Handler) http.Handler) http.Handler {
	cfg := a.cfg
	r := chi.NewRouter()

	r.Use(chimw.RequestID, middleware.TrustedProxies(a.proxies), a.logRequests, chimw.Recoverer, middleware.SecurityHeaders)
	if cfg.CORS.Enabled {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
			MaxAge:         cfg.CORS.MaxAge.Std(),
		}))
	}
	if a.tracer != nil {
		r.Use(middleware.Tracing(middleware.WithTracerProvider(a.tracer)))
	}
	if a.metrics != nil {
		r.Use(a.metrics.Handler)
	}
	if a.store != nil {
		a.limiter = ratelimit.New(a.store, ratelimit.WithLogger(a.logger))
		mwOpts := []ratelimit.MiddlewareOption{
			ratelimit.WithIdentity(ratelimit.DevIdentity(cfg.Development(), cfg.RateLimit.Header)),
		}
		if a.metrics != nil {
			mwOpts = append(mwOpts, ratelimit.OnReject(a.metrics.RateLimited))
		}
		r.Use(ratelimit.Middleware(a.limiter, mwOpts...))
	}
	r.Use(extra...)

	if a.registry != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	}

	if src != nil {
		cache := static.CacheProduction
		if cfg.Development() {
			cache = static.CacheNone
		}
		assets := http.StripPrefix(cfg.Static.Prefix, static.Handler(src, static.Config{
			Cache:  cache,
			Logger: a.logger,
		}))
		r.Handle(cfg.Static.Prefix+"/*", assets)
	}

	a.table.Mount(r)
	r.NotFound(notFound)
	return r
}

// logRequests logs each request at debug level once it has been served.
func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(NotFoundMessage))
}

// =============================================================================
// Accessors
// =============================================================================

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Handler returns the assembled handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Routes returns the compiled route table in registration order.
func (a *App) Routes() []router.Route {
	return a.table.Routes()
}

// Table returns the compiled route table.
func (a *App) Table() *router.RouteTable {
	return a.table
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}
