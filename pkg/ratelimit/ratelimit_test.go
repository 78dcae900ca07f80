package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAllow(t *testing.T) {
	w := Window{Name: "w", Interval: 5 * time.Second, Maximum: 3}
	t0 := time.Unix(1000, 0)

	tests := []struct {
		name         string
		requests     int
		last, now    time.Time
		exists       bool
		wantRequests int
		wantLast     time.Time
		wantAllowed  bool
	}{
		{"first request", 0, time.Time{}, t0, false, 1, t0, true},
		{"within window", 1, t0, t0.Add(time.Second), true, 2, t0.Add(time.Second), true},
		{"at maximum", 3, t0, t0.Add(time.Second), true, 3, t0, false},
		{"window elapsed", 3, t0, t0.Add(5 * time.Second), true, 1, t0.Add(5 * time.Second), true},
		{"just inside", 3, t0, t0.Add(5*time.Second - time.Millisecond), true, 3, t0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests, last, allowed := Allow(w, tt.requests, tt.last, tt.now, tt.exists)
			if requests != tt.wantRequests || !last.Equal(tt.wantLast) || allowed != tt.wantAllowed {
				t.Errorf("Allow() = (%d, %v, %v), want (%d, %v, %v)",
					requests, last, allowed, tt.wantRequests, tt.wantLast, tt.wantAllowed)
			}
		})
	}
}

func TestLimiterBurst(t *testing.T) {
	clk := newClock()
	l := New(NewMemoryStore(), WithWindows(Burst), WithClock(clk.Now), WithLogger(quietLogger()))
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		if !l.Validate(ctx, "1.2.3.4") {
			t.Fatalf("request %d rejected", i)
		}
		clk.Advance(100 * time.Millisecond)
	}
	if l.Validate(ctx, "1.2.3.4") {
		t.Fatal("21st request in the window allowed")
	}
	if !l.Validate(ctx, "5.6.7.8") {
		t.Error("another identity was rejected")
	}

	// The window is measured from the last allowed request.
	clk.Advance(5 * time.Second)
	if !l.Validate(ctx, "1.2.3.4") {
		t.Fatal("first request after the window rejected")
	}
	for i := 2; i <= 20; i++ {
		if !l.Validate(ctx, "1.2.3.4") {
			t.Fatalf("request %d after reset rejected; counter did not reset to 1", i)
		}
	}
	if l.Validate(ctx, "1.2.3.4") {
		t.Error("21st request after reset allowed")
	}
}

func TestLimiterRejectionDoesNotExtendWindow(t *testing.T) {
	clk := newClock()
	w := Window{Name: "w", Interval: time.Second, Maximum: 1}
	l := New(NewMemoryStore(), WithWindows(w), WithClock(clk.Now), WithLogger(quietLogger()))
	ctx := context.Background()

	l.Validate(ctx, "a")
	for i := 0; i < 9; i++ {
		clk.Advance(100 * time.Millisecond)
		l.Validate(ctx, "a")
	}
	clk.Advance(100 * time.Millisecond)
	if !l.Validate(ctx, "a") {
		t.Error("rejected requests moved the window")
	}
}

// countingStore wraps a store and counts hits per window.
type countingStore struct {
	Store
	mu   sync.Mutex
	hits map[string]int
}

func (s *countingStore) Hit(ctx context.Context, w Window, key string, now time.Time) (bool, error) {
	s.mu.Lock()
	s.hits[w.Name]++
	s.mu.Unlock()
	return s.Store.Hit(ctx, w, key, now)
}

func TestLimiterEvaluatesEveryWindow(t *testing.T) {
	store := &countingStore{Store: NewMemoryStore(), hits: map[string]int{}}
	strict := Window{Name: "strict", Interval: time.Minute, Maximum: 1}
	loose := Window{Name: "loose", Interval: time.Minute, Maximum: 100}
	l := New(store, WithWindows(strict, loose), WithLogger(quietLogger()))

	for i := 0; i < 5; i++ {
		l.Validate(context.Background(), "a")
	}
	if store.hits["strict"] != 5 || store.hits["loose"] != 5 {
		t.Errorf("hits = %v, want 5 per window", store.hits)
	}
}

type failingStore struct{}

func (failingStore) Hit(context.Context, Window, string, time.Time) (bool, error) {
	return false, errors.New("database is down")
}

func TestLimiterFailsOpen(t *testing.T) {
	l := New(failingStore{}, WithLogger(quietLogger()))
	if !l.Validate(context.Background(), "a") {
		t.Error("store failure rejected the request")
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	clk := newClock()
	w := Window{Name: "w", Interval: time.Minute, Maximum: 20}
	l := New(NewMemoryStore(), WithWindows(w), WithClock(clk.Now), WithLogger(quietLogger()))

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Validate(context.Background(), "a") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := allowed.Load(); got != 20 {
		t.Errorf("allowed %d concurrent requests, want 20", got)
	}
}

func TestMemoryStorePrune(t *testing.T) {
	s := NewMemoryStore()
	t0 := time.Unix(1000, 0)
	ctx := context.Background()

	s.Hit(ctx, Burst, "a", t0)
	s.Hit(ctx, Sustained, "a", t0)
	s.Hit(ctx, Burst, "b", t0.Add(4*time.Second))
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	s.Prune(t0.Add(6 * time.Second))
	if s.Len() != 2 {
		t.Errorf("Len() after prune = %d, want 2 (burst counter for a expired)", s.Len())
	}
	s.Prune(t0.Add(2 * time.Minute))
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestRemoteIP(t *testing.T) {
	tests := map[string]string{
		"192.0.2.1:1234":     "192.0.2.1",
		"[2001:db8::1]:8080": "2001:db8::1",
		"192.0.2.1":          "192.0.2.1",
		"[fe80::1%eth0]:80":  "fe80::1",
		"":                   "",
	}
	for addr, want := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = addr
		if got := RemoteIP(r); got != want {
			t.Errorf("RemoteIP(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestDevIdentity(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	r.Header.Set(DefaultDevHeader, "10.0.0.9")

	if got := DevIdentity(true, DefaultDevHeader)(r); got != "10.0.0.9" {
		t.Errorf("development identity = %q", got)
	}
	if got := DevIdentity(false, DefaultDevHeader)(r); got != "192.0.2.1" {
		t.Errorf("production identity = %q, the header must be ignored", got)
	}

	r.Header.Del(DefaultDevHeader)
	if got := DevIdentity(true, DefaultDevHeader)(r); got != "192.0.2.1" {
		t.Errorf("identity without header = %q", got)
	}
}

func TestMiddleware(t *testing.T) {
	clk := newClock()
	l := New(NewMemoryStore(),
		WithWindows(Window{Name: "w", Interval: time.Minute, Maximum: 2}),
		WithClock(clk.Now),
		WithLogger(quietLogger()))

	var rejected int
	h := Middleware(l, OnReject(func(*http.Request) { rejected++ }))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))

	var codes []int
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		h.ServeHTTP(w, r)
		codes = append(codes, w.Code)
		if i == 2 {
			if w.Body.String() != RejectMessage {
				t.Errorf("body = %q", w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}
		}
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
	if rejected != 1 {
		t.Errorf("OnReject called %d times, want 1", rejected)
	}
}
