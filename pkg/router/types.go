package router

import (
	"net/http"

	"github.com/vango-dev/fsroute/pkg/handler"
	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// Kind distinguishes page routes from API endpoints.
type Kind string

const (
	KindPage Kind = "page"
	KindAPI  Kind = "api"
)

// File basenames the compiler recognizes, without extension.
const (
	basePage   = "page"
	baseLayout = "layout"
	baseAPI    = "api"
)

// DirectoryNode is one compiled folder. It is built once and not modified
// after its routes are registered.
type DirectoryNode struct {
	// URI is the URL path of the folder, "/" for the root.
	URI string

	// Path is the folder path relative to the routes root, "." for the root.
	Path string

	// Folders lists the sub-folders to descend into, in directory order.
	Folders []string

	// Layout is the folder's own layout, nil if it has none.
	Layout pipeline.Layout

	Page *PageModule
	API  []EndpointModule
}

// PageModule is a classified page export.
type PageModule struct {
	Method  string
	Handler *handler.Handler
	Source  string
}

// EndpointModule is a classified API endpoint.
type EndpointModule struct {
	Path    string
	Method  string
	Handler *handler.Handler
	Source  string
}

// Route is one entry of the route table.
type Route struct {
	Method string

	// Pattern is the chi pattern the route is mounted at.
	Pattern string

	Kind   Kind
	Model  handler.Model
	Source string

	// Layout reports whether a layout is bound to the route.
	Layout bool

	Handler http.Handler
}
