package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// ErrInvalidLayout is returned by ClassifyLayout for values that are not a
// layout function.
var ErrInvalidLayout = errors.New("handler: invalid layout")

// ClassifyLayout converts v to one of the two layout variants.
//
// Immediate layouts have the shape
//
//	func(page string, r *http.Request) string
//
// and deferred layouts
//
//	func(ctx context.Context, page string, r *http.Request) (string, error)
func ClassifyLayout(v any) (pipeline.Layout, error) {
	if isNil(v) {
		return nil, fmt.Errorf("%w: nil", ErrInvalidLayout)
	}

	switch f := v.(type) {
	case pipeline.LayoutFunc:
		return f, nil
	case pipeline.DeferredLayoutFunc:
		return f, nil
	case func(string, *http.Request) string:
		return pipeline.LayoutFunc(f), nil
	case func(context.Context, string, *http.Request) (string, error):
		return pipeline.DeferredLayoutFunc(f), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidLayout, v)
	}
}
