package pipeline

import "errors"

var (
	// ErrAlreadySent is returned by Send and Error once a response has been
	// committed or is being committed.
	ErrAlreadySent = errors.New("pipeline: response already sent")

	// ErrHeadersCommitted is returned by Set after the response headers have
	// been written.
	ErrHeadersCommitted = errors.New("pipeline: headers already committed")

	// ErrStreamClosed is returned by Stream.Write and Stream.End after the
	// stream has closed.
	ErrStreamClosed = errors.New("pipeline: stream closed")

	// ErrStreamNotOpen is returned by Stream.End before the first Write.
	ErrStreamNotOpen = errors.New("pipeline: stream not open")
)

// Generic bodies written when a request cannot be answered normally.
const (
	MsgInternalError   = "Internal Server Error"
	MsgRenderFailed    = "Internal Server Error: Failed to render content."
	MsgSerializeFailed = "Internal Server Error: Failed to serialize response."
)
