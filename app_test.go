package fsroute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/fsroute/internal/config"
	fserrors "github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/internal/logging"
	"github.com/vango-dev/fsroute/pkg/loader"
	"github.com/vango-dev/fsroute/pkg/pipeline"
	"github.com/vango-dev/fsroute/pkg/static"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Static.Enabled = false
	return &cfg
}

// routes is a small tree: a layout, a home page, a streaming page and an
// API module under /users.
func routes(t *testing.T) (fstest.MapFS, *loader.Registry) {
	t.Helper()
	modules := map[string]loader.Exports{
		"layout.go": {Layout: func(page string, _ *http.Request) string {
			return "<main>" + page + "</main>"
		}},
		"page.go": {Page: func(res *pipeline.Response) { res.Send("home") }},
		"stream/page.go": {Page: func(_ context.Context, st *pipeline.Stream) error {
			if err := st.Write("a"); err != nil {
				return err
			}
			return st.End("b")
		}},
		"users/api.go": {API: []loader.Endpoint{{
			Path:   "/add",
			Method: "POST",
			Handler: func(_ context.Context, res *pipeline.Response) error {
				return res.Send(map[string]string{"ok": "yes"})
			},
		}}},
	}

	fsys := fstest.MapFS{}
	reg := loader.NewRegistry()
	for p, ex := range modules {
		fsys[p] = &fstest.MapFile{Data: []byte("package x\n")}
		reg.MustRegister(p, ex)
	}
	return fsys, reg
}

func newApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	fsys, reg := routes(t)
	opts = append([]Option{WithRoutesFS(fsys), WithLogger(logging.Discard())}, opts...)
	app, err := New(context.Background(), cfg, reg, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func get(h http.Handler, method, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAppServesRoutes(t *testing.T) {
	app := newApp(t, testConfig())

	tests := []struct {
		name   string
		method string
		target string
		status int
		body   string
		ctype  string
	}{
		{"page with layout", "GET", "/", 200, "<main>home</main>", "text/html; charset=utf-8"},
		{"stream skips layout", "GET", "/stream", 200, "ab", ""},
		{"api endpoint", "POST", "/users/api/add", 200, `{"ok":"yes"}`, "application/json; charset=utf-8"},
		{"api wrong method", "GET", "/users/api/add", 405, "", ""},
		{"unknown path", "GET", "/nope", 404, NotFoundMessage, "text/plain; charset=utf-8"},
		{"api outside folder", "POST", "/api/add", 404, NotFoundMessage, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(app, tt.method, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
			if tt.ctype != "" && rec.Header().Get("Content-Type") != tt.ctype {
				t.Errorf("content type = %q, want %q", rec.Header().Get("Content-Type"), tt.ctype)
			}
			if rec.Header().Get("X-Frame-Options") != "SAMEORIGIN" {
				t.Error("security headers missing")
			}
		})
	}

	if n := len(app.Routes()); n != 3 {
		t.Errorf("Routes() = %d, want 3", n)
	}
}

func TestAppMetricsEndpoint(t *testing.T) {
	app := newApp(t, testConfig())
	get(app, "GET", "/")
	get(app, "GET", "/stream")

	rec := get(app, "GET", config.DefaultMetricsPath)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`fsroute_http_requests_total{method="GET",route="/",status="200"} 1`,
		`fsroute_stream_chunks_total{route="/stream"} 2`,
		`fsroute_response_bytes_total{route="/"}`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestAppMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	app := newApp(t, cfg)
	if rec := get(app, "GET", config.DefaultMetricsPath); rec.Code != http.StatusNotFound {
		t.Errorf("metrics status = %d, want 404", rec.Code)
	}
}

func TestAppRateLimit(t *testing.T) {
	app := newApp(t, testConfig())

	for i := 1; i <= 20; i++ {
		if rec := get(app, "GET", "/"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := get(app, "GET", "/")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("21st request status = %d, want 429", rec.Code)
	}
	if rec.Body.String() != "Too many requests. Please try again later." {
		t.Errorf("body = %q", rec.Body.String())
	}

	// The dev header is ignored in production.
	if rec := get(app, "GET", "/", "x-dev-ip", "10.0.0.9"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("production honoured dev header: status %d", rec.Code)
	}

	// Scrape from another peer, which has its own budget.
	req := httptest.NewRequest("GET", config.DefaultMetricsPath, nil)
	req.RemoteAddr = "198.51.100.9:1234"
	scrape := httptest.NewRecorder()
	app.ServeHTTP(scrape, req)
	if !strings.Contains(scrape.Body.String(), "fsroute_rate_limited_total 2") {
		t.Error("rejections not counted")
	}
}

func TestAppRateLimitIgnoresForwardedHeaders(t *testing.T) {
	app := newApp(t, testConfig())

	for i := 1; i <= 20; i++ {
		xff := fmt.Sprintf("10.9.%d.%d", i/256, i%256)
		if rec := get(app, "GET", "/", "x-forwarded-for", xff, "x-real-ip", xff); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := get(app, "GET", "/", "x-forwarded-for", "10.9.200.1", "true-client-ip", "10.9.200.2")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("21st request with a fresh X-Forwarded-For status = %d, want 429", rec.Code)
	}
}

func TestAppTrustedProxies(t *testing.T) {
	cfg := testConfig()
	// httptest requests come from 192.0.2.1.
	cfg.Server.TrustedProxies = []string{"192.0.2.0/24"}
	app := newApp(t, cfg)

	for i := 0; i < 20; i++ {
		get(app, "GET", "/", "x-forwarded-for", "198.51.100.1")
	}
	if rec := get(app, "GET", "/", "x-forwarded-for", "198.51.100.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec := get(app, "GET", "/", "x-forwarded-for", "198.51.100.2"); rec.Code != http.StatusOK {
		t.Errorf("other forwarded client status = %d, want 200", rec.Code)
	}

	cfg = testConfig()
	cfg.Server.TrustedProxies = []string{"proxy.internal"}
	if _, err := New(context.Background(), cfg, loader.NewRegistry()); err == nil {
		t.Error("New() accepted an invalid trusted proxy")
	}
}

func TestAppRateLimitDevHeader(t *testing.T) {
	cfg := testConfig()
	cfg.Env = config.EnvDevelopment
	app := newApp(t, cfg)

	for i := 0; i < 20; i++ {
		get(app, "GET", "/", "x-dev-ip", "10.0.0.1")
	}
	if rec := get(app, "GET", "/", "x-dev-ip", "10.0.0.1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec := get(app, "GET", "/", "x-dev-ip", "10.0.0.2"); rec.Code != http.StatusOK {
		t.Errorf("other identity status = %d, want 200", rec.Code)
	}
}

func TestAppRateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = false
	app := newApp(t, cfg)
	for i := 0; i < 25; i++ {
		if rec := get(app, "GET", "/"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
}

func TestAppStatic(t *testing.T) {
	cfg := testConfig()
	cfg.Static.Enabled = true
	assets := fstest.MapFS{
		"app.css":            {Data: []byte("body{}"), ModTime: time.Unix(1700000000, 0)},
		"js/app.1a2b3c4d.js": {Data: []byte("x")},
	}
	app := newApp(t, cfg, WithStaticSource(static.NewDirSource(assets)))

	rec := get(app, "GET", "/public/app.css")
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Fatalf("GET /public/app.css = %d %q", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/css") {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=3600") {
		t.Errorf("cache control = %q", cc)
	}
	if cc := get(app, "GET", "/public/js/app.1a2b3c4d.js").Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("fingerprinted cache control = %q", cc)
	}

	rec = get(app, "GET", "/public/missing.js")
	if rec.Code != http.StatusNotFound || rec.Body.String() != "'missing.js' not found" {
		t.Errorf("missing asset = %d %q", rec.Code, rec.Body.String())
	}
}

func TestAppCORSPreflight(t *testing.T) {
	app := newApp(t, testConfig())
	rec := get(app, "OPTIONS", "/users/api/add",
		"Origin", "https://example.test",
		"Access-Control-Request-Method", "POST",
	)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestAppTracing(t *testing.T) {
	cfg := testConfig()
	cfg.Tracing.Enabled = true
	sr := tracetest.NewSpanRecorder()
	app := newApp(t, cfg, WithSpanProcessor(sr))

	get(app, "GET", "/")
	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "GET /" {
		t.Errorf("span name = %q", spans[0].Name())
	}
}

func TestAppObserverAndMiddleware(t *testing.T) {
	var kinds []pipeline.EventKind
	var seen bool
	app := newApp(t, testConfig(),
		WithObserver(pipeline.ObserverFunc(func(e pipeline.Event) { kinds = append(kinds, e.Kind) })),
		WithMiddleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = true
				next.ServeHTTP(w, r)
			})
		}),
	)
	get(app, "GET", "/")
	if !seen {
		t.Error("custom middleware not run")
	}
	if len(kinds) != 1 || kinds[0] != pipeline.EventCommit {
		t.Errorf("events = %v, want [commit]", kinds)
	}
}

func TestAppCompileError(t *testing.T) {
	fsys, reg := routes(t)
	fsys["orphan/page.go"] = &fstest.MapFile{Data: []byte("package x\n")}

	_, err := New(context.Background(), testConfig(), reg, WithRoutesFS(fsys), WithLogger(logging.Discard()))
	if fserrors.Code(err) != "E101" {
		t.Fatalf("error = %v, want E101", err)
	}
	var fe *fserrors.Error
	if !errors.As(err, &fe) || fe.Path != "orphan/page.go" {
		t.Errorf("path = %+v", fe)
	}
}

func TestNewNilLoader(t *testing.T) {
	if _, err := New(context.Background(), testConfig(), nil); err == nil {
		t.Fatal("expected error for nil loader")
	}
}

func TestAppServe(t *testing.T) {
	app := newApp(t, testConfig())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		cancel()
		t.Fatalf("GET error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "<main>home</main>" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
