package handler

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/vango-dev/fsroute/pkg/pipeline"
)

// PanicError carries a value recovered from a handler panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Handler is a classified handler ready to be bound to a route.
type Handler struct {
	model Model
	impl  any
}

// New classifies v. Invalid values return an error wrapping
// ErrInvalidHandler.
func New(v any) (*Handler, error) {
	m, impl, err := classify(v)
	if err != nil {
		return nil, err
	}
	return &Handler{model: m, impl: impl}, nil
}

// Model returns the handler's execution model.
func (h *Handler) Model() Model { return h.model }

// HTTP binds the handler to cfg. Every request gets a fresh Response or
// Stream; handler errors and panics are turned into 500 responses, and a
// handler that returns without answering gets the fallback response.
func (h *Handler) HTTP(cfg *pipeline.Config) http.Handler {
	switch impl := h.impl.(type) {
	case ImmediateHandler:
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := pipeline.NewResponse(w, r, cfg)
			err := protect(func() error {
				impl.ServePage(res)
				return nil
			})
			if err != nil {
				res.Fail(err)
				return
			}
			res.Finish()
		})

	case DeferredHandler:
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := pipeline.NewResponse(w, r, cfg)
			err := protect(func() error {
				return impl.ServePageContext(r.Context(), res)
			})
			if err != nil {
				res.Fail(err)
				return
			}
			res.Finish()
		})

	case StreamHandler:
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := pipeline.NewStream(w, r, cfg)
			err := protect(func() error {
				return impl.ServeStream(r.Context(), st)
			})
			if err != nil {
				st.Fail(err)
				return
			}
			st.Close()
		})
	}

	// New never builds a Handler with another impl.
	panic(fmt.Sprintf("handler: unexpected implementation %T", h.impl))
}

// protect runs fn, converting a panic into a *PanicError. http.ErrAbortHandler
// is re-raised so net/http can abort the connection.
func protect(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok && errors.Is(e, http.ErrAbortHandler) {
				panic(p)
			}
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()
	return fn()
}
