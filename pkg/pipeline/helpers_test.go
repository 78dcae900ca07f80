package pipeline

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// recorder collects events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(kind EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	cfg  *Config
	obs  *recorder
	logs *bytes.Buffer
	w    *httptest.ResponseRecorder
	r    *http.Request
}

func newFixture(t *testing.T, layout Layout) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	obs := &recorder{}
	return &fixture{
		cfg: &Config{
			Route:    "/test",
			Layout:   layout,
			Logger:   slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
			Observer: obs,
		},
		obs:  obs,
		logs: logs,
		w:    httptest.NewRecorder(),
		r:    httptest.NewRequest(http.MethodGet, "/test", nil),
	}
}

func wrapLayout() Layout {
	return LayoutFunc(func(page string, _ *http.Request) string {
		return "<wrap>" + page + "</wrap>"
	})
}

// failingWriter fails every body write after the headers.
type failingWriter struct {
	header http.Header
	status int
}

func (f *failingWriter) Header() http.Header {
	if f.header == nil {
		f.header = make(http.Header)
	}
	return f.header
}

func (f *failingWriter) WriteHeader(code int) { f.status = code }

func (f *failingWriter) Write([]byte) (int, error) { return 0, http.ErrHandlerTimeout }

// explodingJSON fails inside encoding/json.
type explodingJSON struct{}

func (explodingJSON) MarshalJSON() ([]byte, error) { panic("marshal exploded") }

// panicOnceWriter panics on the first WriteHeader, like net/http does for a
// status code it rejects.
type panicOnceWriter struct {
	*httptest.ResponseRecorder
	panicked bool
}

func (p *panicOnceWriter) WriteHeader(code int) {
	if !p.panicked {
		p.panicked = true
		panic("write header exploded")
	}
	p.ResponseRecorder.WriteHeader(code)
}
