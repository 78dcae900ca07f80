package pipeline

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Renderer renders markup values. Accepts reports which values it handles;
// everything else is left to the Serializer.
type Renderer interface {
	Accepts(v any) bool
	Render(v any) (string, error)
}

// Serializer converts structured values to a string body.
type Serializer interface {
	Serialize(v any) (string, error)
}

// JSONSerializer serializes values with encoding/json.
type JSONSerializer struct{}

// Serialize implements Serializer.
func (JSONSerializer) Serialize(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Failure identifies which negotiation step failed.
type Failure string

const (
	FailureNone      Failure = ""
	FailureRender    Failure = "render"
	FailureSerialize Failure = "serialize"
)

// Negotiated is the outcome of negotiating one payload.
type Negotiated struct {
	// Body is the string written to the client.
	Body string

	// ContentType is the media type implied by the payload, or "" when the
	// caller's content type should be kept (strings and nil).
	ContentType string

	// Status is non-zero when negotiation forces a status (failures).
	Status int

	// Failure and Err describe a recovered failure.
	Failure Failure
	Err     error
}

// Negotiator maps handler payloads to a body and a content type.
type Negotiator struct {
	Renderer   Renderer
	Serializer Serializer
}

// Negotiate converts payload. It never returns an error: failures are
// reported in the result as a 500 text/plain body.
func (n *Negotiator) Negotiate(payload any) Negotiated {
	switch v := payload.(type) {
	case nil:
		return Negotiated{}
	case string:
		return Negotiated{Body: v}
	case []byte:
		return Negotiated{Body: string(v)}
	}

	if n.Renderer != nil && n.Renderer.Accepts(payload) {
		out, err := guard(n.Renderer.Render, payload)
		if err != nil {
			return failed(FailureRender, MsgRenderFailed, err)
		}
		return Negotiated{Body: out, ContentType: ContentTypeHTML}
	}

	ser := n.Serializer
	if ser == nil {
		ser = JSONSerializer{}
	}
	out, err := guard(ser.Serialize, payload)
	if err != nil {
		return failed(FailureSerialize, MsgSerializeFailed, fmt.Errorf("serializing %T: %w", payload, err))
	}
	return Negotiated{Body: out, ContentType: ContentTypeJSON}
}

// guard calls fn, turning a panic into an error. encoding/json does not
// recover panics raised by MarshalJSON methods.
func guard(fn func(any) (string, error), v any) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = ""
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(v)
}

func failed(f Failure, msg string, err error) Negotiated {
	return Negotiated{
		Body:        msg,
		ContentType: ContentTypePlain,
		Status:      http.StatusInternalServerError,
		Failure:     f,
		Err:         err,
	}
}
