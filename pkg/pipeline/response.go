package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// State is the lifecycle state of a Response.
type State int32

const (
	StatePending    State = iota // nothing sent yet
	StateResponding              // a terminal call is negotiating or composing
	StateSent                    // committed to the transport
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateResponding:
		return "RESPONDING"
	case StateSent:
		return "SENT"
	default:
		return "UNKNOWN"
	}
}

// Response is the per-request context handed to immediate and deferred
// handlers. At most one of Send, Error, Finish or Fail reaches the client.
//
// Methods may be called from goroutines spawned by the handler; the state
// transitions are serialized.
type Response struct {
	w   http.ResponseWriter
	r   *http.Request
	cfg *Config

	mu    sync.Mutex
	state State
	acc   settings

	// committed is set while the status line is being written and stays set
	// once it has been. A panic before that leaves it clear, so Fail can still
	// answer.
	committed bool
}

// NewResponse creates the context for one request.
func NewResponse(w http.ResponseWriter, r *http.Request, cfg *Config) *Response {
	return &Response{
		w:   w,
		r:   r,
		cfg: cfg,
		acc: newSettings(),
	}
}

// Request returns the incoming request.
func (res *Response) Request() *http.Request { return res.r }

// Context returns the request context.
func (res *Response) Context() context.Context { return res.r.Context() }

// Param returns a URL parameter captured by the route pattern.
func (res *Response) Param(name string) string { return chi.URLParam(res.r, name) }

// State returns the current state.
func (res *Response) State() State {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.state
}

// Set edits the accumulated response context while nothing has been sent.
// Headers, encoding and layout choice carry into Send and Error; status and
// content type only matter when the handler returns without sending.
func (res *Response) Set(opts ...Option) error {
	res.mu.Lock()
	defer res.mu.Unlock()
	if res.state != StatePending {
		res.misuse("set", "response context changed after send")
		return ErrHeadersCommitted
	}
	res.acc.apply(opts)
	res.checkStatus(&res.acc, res.state)
	return nil
}

// Send commits a successful response. Defaults are 200 and text/html.
func (res *Response) Send(payload any, opts ...Option) error {
	return res.terminal("send", payload, StatusSendDefault, ContentTypeHTML, opts)
}

// Error commits an error response. Defaults are 400 and text/plain.
func (res *Response) Error(payload any, opts ...Option) error {
	return res.terminal("error", payload, StatusErrorDefault, ContentTypePlain, opts)
}

func (res *Response) terminal(op string, payload any, status int, contentType string, opts []Option) error {
	res.mu.Lock()
	if res.state != StatePending {
		res.misuse(op, "response already sent")
		res.mu.Unlock()
		return ErrAlreadySent
	}
	res.state = StateResponding
	s := res.acc.clone()
	res.mu.Unlock()

	s.status = status
	s.contentType = contentType
	s.apply(opts)
	res.checkStatus(&s, StateResponding)

	body := res.negotiate(&s, payload)
	body = res.compose(&s, body)
	res.commit(s, body)
	return nil
}

// Finish sends the fallback response when the handler returned without
// sending. It reports whether it wrote anything.
func (res *Response) Finish() bool {
	res.mu.Lock()
	if res.state != StatePending {
		res.mu.Unlock()
		return false
	}
	res.state = StateResponding
	s := res.acc.clone()
	res.mu.Unlock()

	var body string
	if s.status < http.StatusBadRequest {
		body = res.compose(&s, body)
	}
	res.commit(s, body)
	return true
}

// Fail answers 500 text/plain for a handler that returned an error or
// panicked. Once the status line has been written it only logs.
func (res *Response) Fail(err error) {
	log := res.cfg.logger()
	res.cfg.observer().Observe(Event{Kind: EventHandlerError, Route: res.cfg.route(), Detail: err.Error()})

	res.mu.Lock()
	if res.committed {
		state := res.state
		res.mu.Unlock()
		log.Error("handler failed after response was sent",
			"route", res.cfg.route(), "state", state.String(), "error", err)
		return
	}
	prev := res.state
	res.state = StateResponding
	res.mu.Unlock()

	if prev == StateResponding {
		log.Error("handler failed while responding", "route", res.cfg.route(), "error", err)
	} else {
		log.Error("handler failed", "route", res.cfg.route(), "error", err)
	}

	s := newSettings()
	s.status = http.StatusInternalServerError
	s.contentType = ContentTypePlain
	res.commit(s, MsgInternalError)
}

// negotiate converts payload and folds the outcome into s.
func (res *Response) negotiate(s *settings, payload any) string {
	n := res.cfg.negotiator().Negotiate(payload)
	if n.Failure != FailureNone {
		res.cfg.logger().Error("content negotiation failed",
			"route", res.cfg.route(), "step", string(n.Failure), "error", n.Err)
		res.cfg.observer().Observe(Event{Kind: EventContentError, Route: res.cfg.route(), Detail: string(n.Failure)})
		s.status = n.Status
		s.contentType = n.ContentType
		return n.Body
	}
	if n.ContentType != "" {
		s.contentType = n.ContentType
	}
	return n.Body
}

// compose runs the layout when the response qualifies for one.
func (res *Response) compose(s *settings, body string) string {
	layout := res.cfg.layout()
	if layout == nil || s.status >= http.StatusBadRequest || !s.useLayout || !strings.HasPrefix(s.contentType, "text") {
		return body
	}

	out, err := runLayout(res.r.Context(), layout, body, res.r)
	if err != nil {
		res.cfg.logger().Error("layout failed", "route", res.cfg.route(), "error", err)
		res.cfg.observer().Observe(Event{Kind: EventLayoutError, Route: res.cfg.route()})
		s.status = http.StatusInternalServerError
		s.contentType = ContentTypePlain
		return MsgInternalError
	}
	return out
}

func runLayout(ctx context.Context, l Layout, page string, r *http.Request) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("layout panicked: %v", p)
		}
	}()
	return l.compose(ctx, page, r)
}

// commit writes status, headers and body, then marks the response sent. It
// writes nothing when another commit already went through.
func (res *Response) commit(s settings, body string) {
	res.mu.Lock()
	if res.committed {
		res.mu.Unlock()
		return
	}
	res.committed = true
	res.mu.Unlock()

	h := res.w.Header()
	for k, v := range s.header {
		h[k] = v
	}
	h.Set("Content-Type", s.headerValue())
	res.writeHeader(s.status)
	if _, err := io.WriteString(res.w, body); err != nil {
		res.cfg.logger().Debug("writing response body", "route", res.cfg.route(), "error", err)
	}

	res.mu.Lock()
	res.state = StateSent
	res.mu.Unlock()

	res.cfg.observer().Observe(Event{Kind: EventCommit, Route: res.cfg.route(), Status: s.status, Bytes: len(body)})
}

// writeHeader clears committed again if WriteHeader panics.
func (res *Response) writeHeader(status int) {
	defer func() {
		if p := recover(); p != nil {
			res.mu.Lock()
			res.committed = false
			res.mu.Unlock()
			panic(p)
		}
	}()
	res.w.WriteHeader(status)
}

// checkStatus reports a status code WithStatus refused.
func (res *Response) checkStatus(s *settings, state State) {
	if code := s.takeRejected(); code != 0 {
		res.warn(state, "status", fmt.Sprintf("invalid status code %d ignored", code))
	}
}

func (res *Response) misuse(op, msg string) {
	res.warn(res.state, op, msg)
}

func (res *Response) warn(state State, op, msg string) {
	res.cfg.logger().Warn(msg, "route", res.cfg.route(), "misuse", op, "state", state.String())
	res.cfg.observer().Observe(Event{Kind: EventMisuse, Route: res.cfg.route(), Detail: op})
}
