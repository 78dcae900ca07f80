// Package handler classifies route handlers by execution model and adapts
// them to net/http.
//
// A handler declares its model through its type; nothing is inferred from
// names or source text:
//
//	// Immediate: answers before returning.
//	func Page(res *pipeline.Response) { res.Send("hello") }
//
//	// Deferred: may block and may fail.
//	func Page(ctx context.Context, res *pipeline.Response) error { ... }
//
//	// Streaming: writes chunks until End.
//	func Page(ctx context.Context, st *pipeline.Stream) error { ... }
//
// Types implementing ImmediateHandler, DeferredHandler or StreamHandler are
// accepted as well. A value that satisfies both the response and the stream
// contracts, or neither, is invalid.
package handler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// Model is a handler's execution model.
type Model int

const (
	ModelInvalid Model = iota
	ModelImmediate
	ModelDeferred
	ModelStreaming
)

// String returns the model name.
func (m Model) String() string {
	switch m {
	case ModelImmediate:
		return "immediate"
	case ModelDeferred:
		return "deferred"
	case ModelStreaming:
		return "streaming"
	default:
		return "invalid"
	}
}

// ErrInvalidHandler is returned by Classify for values that do not declare
// exactly one execution model.
var ErrInvalidHandler = errors.New("handler: invalid handler")

// ImmediateHandler answers through the Response before returning.
type ImmediateHandler interface {
	ServePage(res *pipeline.Response)
}

// DeferredHandler may block before answering and may fail.
type DeferredHandler interface {
	ServePageContext(ctx context.Context, res *pipeline.Response) error
}

// StreamHandler writes an incremental response.
type StreamHandler interface {
	ServeStream(ctx context.Context, st *pipeline.Stream) error
}

// Immediate adapts a function to ImmediateHandler.
type Immediate func(res *pipeline.Response)

// ServePage implements ImmediateHandler.
func (f Immediate) ServePage(res *pipeline.Response) { f(res) }

// Deferred adapts a function to DeferredHandler.
type Deferred func(ctx context.Context, res *pipeline.Response) error

// ServePageContext implements DeferredHandler.
func (f Deferred) ServePageContext(ctx context.Context, res *pipeline.Response) error {
	return f(ctx, res)
}

// Streaming adapts a function to StreamHandler.
type Streaming func(ctx context.Context, st *pipeline.Stream) error

// ServeStream implements StreamHandler.
func (f Streaming) ServeStream(ctx context.Context, st *pipeline.Stream) error {
	return f(ctx, st)
}

// Classify returns the execution model of v. It is pure and total: every
// value maps to exactly one model, and invalid values also return an error
// wrapping ErrInvalidHandler.
func Classify(v any) (Model, error) {
	m, _, err := classify(v)
	return m, err
}

// classify returns the model together with v normalized to the matching
// handler interface.
func classify(v any) (Model, any, error) {
	if isNil(v) {
		return ModelInvalid, nil, fmt.Errorf("%w: nil", ErrInvalidHandler)
	}

	switch f := v.(type) {
	case func(*pipeline.Response):
		return ModelImmediate, Immediate(f), nil
	case func(context.Context, *pipeline.Response) error:
		return ModelDeferred, Deferred(f), nil
	case func(context.Context, *pipeline.Stream) error:
		return ModelStreaming, Streaming(f), nil
	}

	imm, isImm := v.(ImmediateHandler)
	def, isDef := v.(DeferredHandler)
	str, isStr := v.(StreamHandler)

	switch {
	case (isImm || isDef) && isStr:
		return ModelInvalid, nil, fmt.Errorf("%w: %T implements both response and stream handlers", ErrInvalidHandler, v)
	case isImm && isDef:
		return ModelInvalid, nil, fmt.Errorf("%w: %T implements both immediate and deferred handlers", ErrInvalidHandler, v)
	case isImm:
		return ModelImmediate, imm, nil
	case isDef:
		return ModelDeferred, def, nil
	case isStr:
		return ModelStreaming, str, nil
	default:
		return ModelInvalid, nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidHandler, v)
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// NormalizeMethod uppercases an HTTP method; an empty method becomes GET.
func NormalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "GET"
	}
	return method
}
