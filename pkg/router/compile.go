package router

import (
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	fserrors "github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/handler"
	"github.com/vango-dev/fsroute/pkg/loader"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	logger     *slog.Logger
	observer   pipeline.Observer
	negotiator *pipeline.Negotiator
}

// WithLogger sets the logger used during compilation and by every route's
// pipeline.
func WithLogger(l *slog.Logger) CompileOption {
	return func(o *compileOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the observer notified of pipeline events.
func WithObserver(obs pipeline.Observer) CompileOption {
	return func(o *compileOptions) {
		o.observer = obs
	}
}

// WithNegotiator replaces the default content negotiator.
func WithNegotiator(n *pipeline.Negotiator) CompileOption {
	return func(o *compileOptions) {
		o.negotiator = n
	}
}

type compiler struct {
	fsys   fs.FS
	loader loader.Loader
	opts   compileOptions
	log    *slog.Logger

	routes []Route
	seen   map[string]string // method + normalized pattern -> source
	nodes  []*DirectoryNode
}

// Compile walks fsys from its root, depth first and pre-order, and returns
// the route table. Any load or read failure aborts the compile with an
// *errors.Error; no partial table is returned.
func Compile(fsys fs.FS, l loader.Loader, opts ...CompileOption) (*RouteTable, error) {
	o := compileOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &compiler{
		fsys:   fsys,
		loader: l,
		opts:   o,
		log:    o.logger.With("component", "router"),
		seen:   make(map[string]string),
	}
	if err := c.walk(".", "/", nil); err != nil {
		return nil, err
	}

	c.log.Debug("routes compiled", "routes", len(c.routes), "folders", len(c.nodes))
	return &RouteTable{routes: c.routes, nodes: c.nodes}, nil
}

func (c *compiler) walk(dir, uri string, inherited pipeline.Layout) error {
	node, err := c.readNode(dir, uri)
	if err != nil {
		return err
	}
	c.nodes = append(c.nodes, node)

	layout := inherited
	if node.Layout != nil {
		layout = node.Layout
	}
	if err := c.register(node, layout); err != nil {
		return err
	}

	for _, folder := range node.Folders {
		if err := c.walk(path.Join(dir, folder), path.Join(uri, folder), layout); err != nil {
			return err
		}
	}
	return nil
}

// readNode loads the recognized files of one folder.
func (c *compiler) readNode(dir, uri string) (*DirectoryNode, error) {
	entries, err := fs.ReadDir(c.fsys, dir)
	if err != nil {
		return nil, fserrors.New("E103").WithPath(dir).Wrap(err)
	}

	node := &DirectoryNode{URI: uri, Path: dir}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if !strings.EqualFold(name, baseAPI) {
				node.Folders = append(node.Folders, name)
			}
			continue
		}
		if !entry.Type().IsRegular() || !loader.Supported(name) {
			continue
		}

		base := strings.TrimSuffix(name, path.Ext(name))
		if base != basePage && base != baseLayout && base != baseAPI {
			continue
		}

		rel := path.Join(dir, name)
		exports, err := c.loader.Load(rel)
		if err != nil {
			switch {
			case errors.Is(err, loader.ErrUnsupportedExtension):
				continue
			case errors.Is(err, loader.ErrNotRegistered):
				return nil, fserrors.New("E101").WithPath(rel).Wrap(err)
			default:
				return nil, fserrors.New("E100").WithPath(rel).Wrap(err)
			}
		}

		switch base {
		case basePage:
			node.Page = c.page(rel, exports)
		case baseLayout:
			l, err := layoutOf(rel, exports)
			if err != nil {
				return nil, err
			}
			node.Layout = l
		case baseAPI:
			node.API = c.endpoints(rel, exports)
		}
	}
	return node, nil
}

func (c *compiler) page(rel string, ex loader.Exports) *PageModule {
	v := ex.Page
	if v == nil {
		v = ex.Default
	}
	if v == nil {
		c.log.Debug("page module exports no handler", "path", rel)
		return nil
	}

	h, err := handler.New(v)
	if err != nil {
		c.log.Warn("page handler skipped", "path", rel, "error", err)
		return nil
	}
	return &PageModule{
		Method:  handler.NormalizeMethod(ex.Method),
		Handler: h,
		Source:  rel,
	}
}

func layoutOf(rel string, ex loader.Exports) (pipeline.Layout, error) {
	v := ex.Layout
	if v == nil {
		v = ex.Default
	}
	if v == nil {
		return nil, nil
	}

	l, err := handler.ClassifyLayout(v)
	if err != nil {
		return nil, fserrors.New("E102").
			WithPath(rel).
			WithDetailf("The layout export has type %T.", v).
			WithSuggestion("Export func(page string, r *http.Request) string or func(ctx context.Context, page string, r *http.Request) (string, error)").
			Wrap(err)
	}
	return l, nil
}

func (c *compiler) endpoints(rel string, ex loader.Exports) []EndpointModule {
	v := ex.API
	if v == nil {
		v = ex.Default
	}

	var raw []loader.Endpoint
	switch e := v.(type) {
	case nil:
		return nil
	case loader.Endpoint:
		raw = []loader.Endpoint{e}
	case *loader.Endpoint:
		if e != nil {
			raw = []loader.Endpoint{*e}
		}
	case []loader.Endpoint:
		raw = e
	case []*loader.Endpoint:
		for _, p := range e {
			if p != nil {
				raw = append(raw, *p)
			}
		}
	default:
		c.log.Warn("api module skipped", "path", rel, "type", typeName(v))
		return nil
	}

	var out []EndpointModule
	for i, ep := range raw {
		if ep.Path == "" || ep.Handler == nil {
			c.log.Debug("api endpoint skipped", "path", rel, "index", i)
			continue
		}
		h, err := handler.New(ep.Handler)
		if err != nil {
			c.log.Warn("api handler skipped", "path", rel, "endpoint", ep.Path, "error", err)
			continue
		}
		out = append(out, EndpointModule{
			Path:    ep.Path,
			Method:  handler.NormalizeMethod(ep.Method),
			Handler: h,
			Source:  rel,
		})
	}
	return out
}

// register adds the node's page, then its endpoints. Streaming pages and
// API endpoints are never layout-composed.
func (c *compiler) register(node *DirectoryNode, layout pipeline.Layout) error {
	if p := node.Page; p != nil {
		bound := layout
		if p.Handler.Model() == handler.ModelStreaming {
			bound = nil
		}
		err := c.add(Route{
			Method:  p.Method,
			Pattern: node.URI,
			Kind:    KindPage,
			Model:   p.Handler.Model(),
			Source:  p.Source,
		}, p.Handler, bound)
		if err != nil {
			return err
		}
	}

	for _, ep := range node.API {
		err := c.add(Route{
			Method:  ep.Method,
			Pattern: endpointPattern(node.URI, ep.Path),
			Kind:    KindAPI,
			Model:   ep.Handler.Model(),
			Source:  ep.Source,
		}, ep.Handler, nil)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) add(rt Route, h *handler.Handler, layout pipeline.Layout) error {
	key := rt.Method + " " + normalizePattern(rt.Pattern)
	if prev, ok := c.seen[key]; ok {
		return fserrors.New("E104").
			WithPath(rt.Source).
			WithDetailf("%s %s is declared by both %s and %s.", rt.Method, rt.Pattern, prev, rt.Source)
	}
	c.seen[key] = rt.Source

	rt.Layout = layout != nil
	rt.Handler = h.HTTP(&pipeline.Config{
		Route:      rt.Pattern,
		Layout:     layout,
		Negotiator: c.opts.negotiator,
		Logger:     c.opts.logger,
		Observer:   c.opts.observer,
	})
	c.routes = append(c.routes, rt)

	c.log.Debug("route registered",
		"method", rt.Method,
		"pattern", rt.Pattern,
		"model", rt.Model.String(),
		"source", rt.Source)
	return nil
}
