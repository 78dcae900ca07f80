package static

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestRelPath(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"/css/app.css", "css/app.css", true},
		{"/logo.png", "logo.png", true},
		{"/a/b/../c", "", false},
		{"/../etc/passwd", "", false},
		{"//etc/passwd", "", false},
		{"/./x", "", false},
		{"/a\\b", "", false},
		{"/a\x00b", "", false},
		{"/", "", false},
		{"", "", false},
		{"/dir/", "dir", true},
	}
	for _, tt := range tests {
		got, ok := RelPath(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("RelPath(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsFingerprinted(t *testing.T) {
	tests := map[string]bool{
		"app.a1b2c3d4.css":      true,
		"js/app.0123abcd.js":    true,
		"app.css":               false,
		"app.min.css":           false,
		"app.a1b2c3.css":        false,
		"vendor.zzzzzzzz.js":    false,
		"img/logo.DEADBEEF.png": true,
	}
	for name, want := range tests {
		if got := isFingerprinted(name); got != want {
			t.Errorf("isFingerprinted(%q) = %v, want %v", name, got, want)
		}
	}
}

func publicFS() fstest.MapFS {
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return fstest.MapFS{
		"css/app.css":          {Data: []byte("body{}"), ModTime: mod},
		"js/app.0123abcd.js":   {Data: []byte("run()"), ModTime: mod},
		"img/nested/empty.txt": {Data: []byte("")},
	}
}

func get(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHandlerDirSource(t *testing.T) {
	h := Handler(NewDirSource(publicFS()), Config{Headers: map[string]string{"X-Asset": "1"}})

	w := get(h, "GET", "/css/app.css")
	if w.Code != 200 || w.Body.String() != "body{}" {
		t.Fatalf("GET css = %d %q", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Asset") != "1" {
		t.Error("custom header missing")
	}

	tests := []struct {
		method, target string
		code           int
		body           string
	}{
		{"GET", "/css/missing.css", 404, "'missing.css' not found"},
		{"GET", "/img/nested", 404, "'nested' not found"},
		{"GET", "/../secret.txt", 404, "'secret.txt' not found"},
		{"POST", "/css/app.css", 405, ""},
		{"HEAD", "/css/app.css", 200, ""},
	}
	for _, tt := range tests {
		w := get(h, tt.method, tt.target)
		if w.Code != tt.code {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.target, w.Code, tt.code)
		}
		if tt.body != "" && w.Body.String() != tt.body {
			t.Errorf("%s %s body = %q, want %q", tt.method, tt.target, w.Body.String(), tt.body)
		}
	}
}

func TestHandlerCache(t *testing.T) {
	tests := []struct {
		mode   CacheMode
		target string
		want   string
	}{
		{CacheDefault, "/css/app.css", ""},
		{CacheNone, "/css/app.css", "no-store, no-cache, must-revalidate"},
		{CacheProduction, "/css/app.css", "public, max-age=3600, must-revalidate"},
		{CacheProduction, "/js/app.0123abcd.js", "public, max-age=31536000, immutable"},
	}
	for _, tt := range tests {
		h := Handler(NewDirSource(publicFS()), Config{Cache: tt.mode})
		if got := get(h, "GET", tt.target).Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("mode %d %s Cache-Control = %q, want %q", tt.mode, tt.target, got, tt.want)
		}
	}
}

// fakeS3 answers path-style GetObject requests for one bucket.
func fakeS3(t *testing.T, bucket string, objects map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := strings.CutPrefix(r.URL.Path, "/"+bucket+"/")
		body, found := objects[key]
		if !ok || !found {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", "text/css")
		w.Header().Set("ETag", `"abc123"`)
		w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestS3Source(t *testing.T) {
	srv := fakeS3(t, "assets", map[string]string{"public/css/app.css": "body{color:red}"})
	client := NewS3Client(S3Config{Endpoint: srv.URL, UsePathStyle: true})
	src := NewS3Source(client, "assets", "public")

	asset, err := src.Open(context.Background(), "css/app.css")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer asset.Close()
	data, _ := io.ReadAll(asset.Content)
	if string(data) != "body{color:red}" {
		t.Errorf("content = %q", data)
	}
	if asset.ContentType != "text/css" || asset.ETag != `"abc123"` {
		t.Errorf("asset = %+v", asset)
	}
	if asset.ModTime.IsZero() {
		t.Error("ModTime not set")
	}

	if _, err := src.Open(context.Background(), "css/missing.css"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing object error = %v, want ErrNotFound", err)
	}

	h := Handler(src, Config{})
	w := get(h, "GET", "/css/app.css")
	if w.Code != 200 || w.Body.String() != "body{color:red}" {
		t.Errorf("GET = %d %q", w.Code, w.Body.String())
	}
	if w := get(h, "GET", "/img/logo.png"); w.Code != 404 || w.Body.String() != "'logo.png' not found" {
		t.Errorf("GET missing = %d %q", w.Code, w.Body.String())
	}
}

type brokenSource struct{}

func (brokenSource) Open(context.Context, string) (*Asset, error) {
	return nil, errors.New("network unreachable")
}

func TestHandlerSourceError(t *testing.T) {
	w := get(Handler(brokenSource{}, Config{}), "GET", "/x.css")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
