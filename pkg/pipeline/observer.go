package pipeline

// EventKind classifies pipeline events reported to an Observer.
type EventKind string

const (
	EventCommit       EventKind = "commit"
	EventMisuse       EventKind = "misuse"
	EventContentError EventKind = "content_error"
	EventLayoutError  EventKind = "layout_error"
	EventHandlerError EventKind = "handler_error"
	EventStreamChunk  EventKind = "stream_chunk"
	EventStreamClose  EventKind = "stream_close"
)

// Event describes something that happened to one request.
type Event struct {
	Kind   EventKind
	Route  string
	Status int
	Bytes  int
	Detail string
}

// Observer receives pipeline events. Implementations must be safe for
// concurrent use; one Observer serves every request.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
