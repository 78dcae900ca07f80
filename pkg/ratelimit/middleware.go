package ratelimit

import (
	"net/http"
)

// RejectMessage is the body of a 429 response.
const RejectMessage = "Too many requests. Please try again later."

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	identity IdentityFunc
	onReject func(r *http.Request)
}

// WithIdentity sets how requests are identified. Default: RemoteIP.
func WithIdentity(fn IdentityFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.identity = fn
		}
	}
}

// OnReject registers a callback run for every rejected request.
func OnReject(fn func(r *http.Request)) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.onReject = fn
	}
}

// Middleware answers 429 text/plain for requests v rejects and passes the
// others to next.
func Middleware(v Validator, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{identity: RemoteIP}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v.Validate(r.Context(), cfg.identity(r)) {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.onReject != nil {
				cfg.onReject(r)
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(RejectMessage))
		})
	}
}
