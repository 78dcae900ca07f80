// Package pipeline turns handler output into exactly one HTTP response.
//
// Two per-request context objects are provided:
//
//   - Response, for immediate and deferred handlers. It moves through
//     PENDING, RESPONDING and SENT. The first Send or Error call wins. Every
//     later call is logged as a warning and has no effect on the client.
//   - Stream, for streaming handlers. It moves through IDLE, OPEN and
//     CLOSED. The first Write commits the headers; End closes the body.
//
// Both negotiate the payload before writing it. A string passes through
// unchanged. A markup tree is rendered to HTML. Any other value is
// serialized to JSON. A render or serialize failure becomes a 500 text/plain
// response instead of an error returned to the handler's caller.
//
// Response additionally composes successful text bodies with the route's
// layout:
//
//	status < 400 && useLayout && strings.HasPrefix(contentType, "text")
//
// Streams are never layout-composed.
package pipeline
