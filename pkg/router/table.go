package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

var standardMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// RouteTable is the result of Compile. It is read-only and safe to share.
type RouteTable struct {
	routes []Route
	nodes  []*DirectoryNode
}

// Routes returns the routes in registration order.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Nodes returns the compiled folders in walk order.
func (t *RouteTable) Nodes() []*DirectoryNode {
	out := make([]*DirectoryNode, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Len returns the number of routes.
func (t *RouteTable) Len() int { return len(t.routes) }

// Mount registers every route on r. Methods outside the standard set are
// registered with chi first.
func (t *RouteTable) Mount(r chi.Router) {
	for _, rt := range t.routes {
		if !standardMethods[rt.Method] {
			chi.RegisterMethod(rt.Method)
		}
		r.Method(rt.Method, rt.Pattern, rt.Handler)
	}
}
