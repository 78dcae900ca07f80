package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// StreamState is the lifecycle state of a Stream.
type StreamState int32

const (
	StreamIdle   StreamState = iota // headers not written
	StreamOpen                      // headers written, body open
	StreamClosed                    // body finished
)

// String returns the state name.
func (s StreamState) String() string {
	switch s {
	case StreamIdle:
		return "IDLE"
	case StreamOpen:
		return "OPEN"
	case StreamClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Stream is the per-request context handed to streaming handlers. Every
// Write is flushed to the client immediately.
type Stream struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	r   *http.Request
	cfg *Config

	mu    sync.Mutex
	state StreamState
	acc   settings
	bytes int64
}

// NewStream creates the streaming context for one request.
func NewStream(w http.ResponseWriter, r *http.Request, cfg *Config) *Stream {
	return &Stream{
		w:   w,
		rc:  http.NewResponseController(w),
		r:   r,
		cfg: cfg,
		acc: newSettings(),
	}
}

// Request returns the incoming request.
func (st *Stream) Request() *http.Request { return st.r }

// Context returns the request context. It is canceled when the client goes away.
func (st *Stream) Context() context.Context { return st.r.Context() }

// Param returns a URL parameter captured by the route pattern.
func (st *Stream) Param(name string) string { return chi.URLParam(st.r, name) }

// State returns the current state.
func (st *Stream) State() StreamState {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// BytesWritten returns the number of body bytes written so far.
func (st *Stream) BytesWritten() int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.bytes
}

// Set edits status, content type, encoding and headers before the first
// Write. Afterwards it is a no-op.
func (st *Stream) Set(opts ...Option) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.state != StreamIdle {
		st.misuse("set", "stream headers already committed")
		return ErrHeadersCommitted
	}
	st.acc.apply(opts)
	st.checkStatus()
	return nil
}

// Write sends one chunk. The first call commits the headers, applying opts;
// opts on later calls are ignored.
func (st *Stream) Write(payload any, opts ...Option) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch st.state {
	case StreamClosed:
		st.misuse("write", "stream already closed")
		return ErrStreamClosed
	case StreamOpen:
		if len(opts) > 0 {
			st.misuse("options", "stream options only apply to the first write")
		}
	}

	if err := st.r.Context().Err(); err != nil {
		st.closeLocked("canceled")
		return err
	}

	n := st.cfg.negotiator().Negotiate(payload)

	if st.state == StreamIdle {
		st.acc.apply(opts)
		st.checkStatus()
		if n.Failure != FailureNone {
			st.contentFailure(n)
			st.acc.status = n.Status
			st.acc.contentType = n.ContentType
			st.acc.explicitType = true
			st.openLocked()
			st.writeLocked(n.Body)
			st.closeLocked("content error")
			return n.Err
		}
		if n.ContentType != "" && !st.acc.explicitType {
			st.acc.contentType = n.ContentType
		}
		st.openLocked()
	} else if n.Failure != FailureNone {
		st.contentFailure(n)
		return n.Err
	}

	return st.writeLocked(n.Body)
}

// End closes the stream, writing payload first when one is given. It is
// rejected before the first Write and after the stream has closed.
func (st *Stream) End(payload ...any) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch st.state {
	case StreamIdle:
		st.misuse("end", "stream has not started")
		return ErrStreamNotOpen
	case StreamClosed:
		st.misuse("end", "stream already closed")
		return ErrStreamClosed
	}

	var err error
	if len(payload) > 0 && payload[0] != nil {
		n := st.cfg.negotiator().Negotiate(payload[0])
		if n.Failure != FailureNone {
			st.contentFailure(n)
			err = n.Err
		} else {
			err = st.writeLocked(n.Body)
		}
	}
	if st.state == StreamOpen {
		st.closeLocked("end")
	}
	return err
}

// Close force-closes an open stream. An idle stream is committed with an
// empty body so the client always gets a response. It reports whether the
// stream was still open.
func (st *Stream) Close() bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch st.state {
	case StreamOpen:
		st.closeLocked("handler returned")
		return true
	case StreamIdle:
		st.openLocked()
		st.closeLocked("handler returned")
	}
	return false
}

// Fail handles a handler error or panic. An idle stream answers 500
// text/plain; an open stream is closed.
//
// A handler returning context.Canceled after the client went away is not a
// failure: the stream is closed without a response and logged at debug.
func (st *Stream) Fail(err error) {
	if errors.Is(err, context.Canceled) && st.r.Context().Err() != nil {
		st.cfg.logger().Debug("stream handler canceled", "route", st.cfg.route(), "error", err)
		st.mu.Lock()
		st.closeLocked("canceled")
		st.mu.Unlock()
		return
	}

	st.cfg.observer().Observe(Event{Kind: EventHandlerError, Route: st.cfg.route(), Detail: err.Error()})
	st.cfg.logger().Error("stream handler failed", "route", st.cfg.route(), "error", err)

	st.mu.Lock()
	defer st.mu.Unlock()

	switch st.state {
	case StreamIdle:
		s := newSettings()
		s.status = http.StatusInternalServerError
		s.contentType = ContentTypePlain
		st.acc = s
		st.openLocked()
		st.writeLocked(MsgInternalError)
		st.closeLocked("handler error")
	case StreamOpen:
		st.closeLocked("handler error")
	}
}

func (st *Stream) openLocked() {
	h := st.w.Header()
	for k, v := range st.acc.header {
		h[k] = v
	}
	h.Set("Content-Type", st.acc.headerValue())
	h.Set("X-Content-Type-Options", "nosniff")
	st.w.WriteHeader(st.acc.status)
	st.state = StreamOpen
	st.flush()
}

func (st *Stream) writeLocked(data string) error {
	if data == "" {
		return nil
	}
	n, err := io.WriteString(st.w, data)
	st.bytes += int64(n)
	if err == nil {
		err = st.flush()
	}
	if err != nil {
		st.cfg.logger().Debug("stream write failed", "route", st.cfg.route(), "error", err)
		st.closeLocked("write failed")
		return err
	}
	st.cfg.logger().Debug("streamed chunk", "route", st.cfg.route(), "bytes", n)
	st.cfg.observer().Observe(Event{Kind: EventStreamChunk, Route: st.cfg.route(), Bytes: n})
	return nil
}

func (st *Stream) flush() error {
	err := st.rc.Flush()
	if errors.Is(err, http.ErrNotSupported) {
		return nil
	}
	return err
}

func (st *Stream) closeLocked(reason string) {
	if st.state == StreamClosed {
		return
	}
	prev := st.state
	st.state = StreamClosed
	st.cfg.logger().Debug("stream closed", "route", st.cfg.route(), "reason", reason, "bytes", st.bytes)
	status := 0
	if prev != StreamIdle {
		status = st.acc.status
	}
	st.cfg.observer().Observe(Event{Kind: EventStreamClose, Route: st.cfg.route(), Status: status, Bytes: int(st.bytes), Detail: reason})
}

func (st *Stream) contentFailure(n Negotiated) {
	st.cfg.logger().Error("stream content negotiation failed",
		"route", st.cfg.route(), "step", string(n.Failure), "error", n.Err)
	st.cfg.observer().Observe(Event{Kind: EventContentError, Route: st.cfg.route(), Detail: string(n.Failure)})
}

// checkStatus reports a status code WithStatus refused. Callers hold mu.
func (st *Stream) checkStatus() {
	if code := st.acc.takeRejected(); code != 0 {
		st.misuse("status", fmt.Sprintf("invalid status code %d ignored", code))
	}
}

func (st *Stream) misuse(op, msg string) {
	st.cfg.logger().Warn(msg, "route", st.cfg.route(), "misuse", op, "state", st.state.String())
	st.cfg.observer().Observe(Event{Kind: EventMisuse, Route: st.cfg.route(), Detail: op})
}
