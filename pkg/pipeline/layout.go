package pipeline

import (
	"context"
	"net/http"
)

// Layout wraps a rendered page body in a document shell. It is a closed
// union of LayoutFunc and DeferredLayoutFunc; layouts never stream.
type Layout interface {
	compose(ctx context.Context, page string, r *http.Request) (string, error)
	isDeferred() bool
}

// LayoutFunc is an immediate layout.
type LayoutFunc func(page string, r *http.Request) string

func (f LayoutFunc) compose(_ context.Context, page string, r *http.Request) (string, error) {
	return f(page, r), nil
}

func (LayoutFunc) isDeferred() bool { return false }

// DeferredLayoutFunc is a layout that may block on I/O and may fail.
type DeferredLayoutFunc func(ctx context.Context, page string, r *http.Request) (string, error)

func (f DeferredLayoutFunc) compose(ctx context.Context, page string, r *http.Request) (string, error) {
	return f(ctx, page, r)
}

func (DeferredLayoutFunc) isDeferred() bool { return true }

// IsDeferred reports whether l is a DeferredLayoutFunc.
func IsDeferred(l Layout) bool {
	return l != nil && l.isDeferred()
}
