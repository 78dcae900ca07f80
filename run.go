package fsroute

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// pruneInterval is how often a persistent rate limit store is swept.
const pruneInterval = time.Minute

// pruner is implemented by stores that need periodic cleanup from outside.
type pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		_ = a.Close()
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done. In-flight requests get the
// configured shutdown timeout to finish. Serve closes the App's stores
// before returning.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout.Std(),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	if p, ok := a.store.(pruner); ok && a.limiter != nil {
		pruneCtx, stop := context.WithCancel(ctx)
		defer stop()
		go a.prune(pruneCtx, p)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", "addr", ln.Addr().String(), "env", a.cfg.Env)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		_ = a.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := a.cfg.Server.ShutdownTimeout.Std()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.logger.Info("shutting down", "timeout", timeout)
	err := srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		err = errors.Join(err, serveErr)
	}
	return errors.Join(err, a.Close())
}

// Close releases the rate limit store and flushes the tracer provider. It
// is safe to call more than once.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c(ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}

// prune removes counters idle for longer than the longest window.
func (a *App) prune(ctx context.Context, p pruner) {
	var longest time.Duration
	for _, w := range a.limiter.Windows() {
		longest = max(longest, w.Interval)
	}

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := p.Prune(ctx, now.Add(-longest))
			if err != nil {
				a.logger.Warn("pruning rate limit counters", "error", err)
				continue
			}
			if n > 0 {
				a.logger.Debug("pruned rate limit counters", "rows", n)
			}
		}
	}
}
