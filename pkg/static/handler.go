package static

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
)

// CacheMode selects the Cache-Control policy.
type CacheMode int

const (
	// CacheDefault sends no Cache-Control header.
	CacheDefault CacheMode = iota

	// CacheNone disables caching, for development.
	CacheNone

	// CacheProduction caches fingerprinted files for a year and everything
	// else for an hour.
	CacheProduction
)

// Config configures Handler.
type Config struct {
	Cache CacheMode

	// Headers are added to every asset response.
	Headers map[string]string

	// Logger records source failures. Default: slog.Default().
	Logger *slog.Logger
}

// Handler serves assets from src. The request path must already be relative
// to the mount point, e.g. through http.StripPrefix. Missing assets get
// 404 "'<name>' not found".
func Handler(src Source, cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "static")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}

		rel, ok := RelPath(r.URL.Path)
		if !ok {
			notFound(w, r.URL.Path)
			return
		}

		asset, err := src.Open(r.Context(), rel)
		if errors.Is(err, ErrNotFound) {
			notFound(w, rel)
			return
		}
		if err != nil {
			logger.Error("opening asset", "path", rel, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer asset.Close()

		h := w.Header()
		applyCache(h, cfg.Cache, rel)
		for k, v := range cfg.Headers {
			h.Set(k, v)
		}
		if asset.ContentType != "" {
			h.Set("Content-Type", asset.ContentType)
		}
		if asset.ETag != "" {
			h.Set("ETag", asset.ETag)
		}
		http.ServeContent(w, r, rel, asset.ModTime, asset.Content)
	})
}

// NotFoundMessage is the body written for a missing asset.
func NotFoundMessage(name string) string {
	return fmt.Sprintf("'%s' not found", path.Base(name))
}

func notFound(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, NotFoundMessage(name))
}

func applyCache(h http.Header, mode CacheMode, name string) {
	switch mode {
	case CacheNone:
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case CacheProduction:
		if isFingerprinted(name) {
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			h.Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}
