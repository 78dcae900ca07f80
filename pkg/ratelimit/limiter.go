package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Window is one fixed rate window.
type Window struct {
	// Name identifies the window in the store, e.g. "burst".
	Name string

	// Interval is the window length.
	Interval time.Duration

	// Maximum is the number of requests allowed within Interval.
	Maximum int
}

// Default windows.
var (
	Burst     = Window{Name: "burst", Interval: 5 * time.Second, Maximum: 20}
	Sustained = Window{Name: "sustained", Interval: time.Minute, Maximum: 200}
)

// DefaultWindows returns the burst and sustained windows.
func DefaultWindows() []Window {
	return []Window{Burst, Sustained}
}

// Store keeps per-window counters. Hit applies the window policy for key at
// now and reports whether the request is allowed; check and update must be
// atomic per key.
type Store interface {
	Hit(ctx context.Context, w Window, key string, now time.Time) (bool, error)
}

// Validator decides whether a request from identity may proceed.
type Validator interface {
	Validate(ctx context.Context, identity string) bool
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithWindows replaces the default windows.
func WithWindows(windows ...Window) Option {
	return func(l *Limiter) {
		l.windows = windows
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Limiter combines several windows over one Store.
type Limiter struct {
	store   Store
	windows []Window
	now     func() time.Time
	logger  *slog.Logger
}

var _ Validator = (*Limiter)(nil)

// New creates a Limiter using the default windows unless overridden.
func New(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:   store,
		windows: DefaultWindows(),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "ratelimit")
	return l
}

// Windows returns the configured windows.
func (l *Limiter) Windows() []Window {
	out := make([]Window, len(l.windows))
	copy(out, l.windows)
	return out
}

// Validate implements Validator. Every window records the request, even
// after an earlier window has rejected it.
func (l *Limiter) Validate(ctx context.Context, identity string) bool {
	now := l.now()
	allowed := true
	for _, w := range l.windows {
		ok, err := l.store.Hit(ctx, w, identity, now)
		if err != nil {
			l.logger.Error("rate limit store failed", "window", w.Name, "identity", identity, "error", err)
			continue
		}
		if !ok {
			l.logger.Debug("rate limit exceeded", "window", w.Name, "identity", identity)
			allowed = false
		}
	}
	return allowed
}

// Allow applies the window policy to one counter. It returns the new counter
// state and whether the request is allowed; on rejection the state is
// returned unchanged. Stores without atomic SQL use it under their own lock.
func Allow(w Window, requests int, last, now time.Time, exists bool) (int, time.Time, bool) {
	switch {
	case !exists:
		return 1, now, true
	case now.Sub(last) < w.Interval:
		if requests >= w.Maximum {
			return requests, last, false
		}
		return requests + 1, now, true
	default:
		return 1, now, true
	}
}
