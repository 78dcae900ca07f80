package pipeline

import (
	"net/http"
	"strings"
)

// Defaults shared by Response and Stream.
const (
	DefaultEncoding    = "utf-8"
	ContentTypeHTML    = "text/html"
	ContentTypePlain   = "text/plain"
	ContentTypeJSON    = "application/json"
	StatusSendDefault  = http.StatusOK
	StatusErrorDefault = http.StatusBadRequest
)

// settings is the accumulated response context an Option edits.
type settings struct {
	status      int
	contentType string
	encoding    string
	header      http.Header
	useLayout   bool

	// explicitType records that the caller chose contentType, so content
	// negotiation on a stream does not replace it.
	explicitType bool

	// rejected holds the last out-of-range code passed to WithStatus until
	// the owner reports it.
	rejected int
}

func newSettings() settings {
	return settings{
		status:      StatusSendDefault,
		contentType: ContentTypeHTML,
		encoding:    DefaultEncoding,
		header:      make(http.Header),
		useLayout:   true,
	}
}

func (s settings) clone() settings {
	s.header = s.header.Clone()
	return s
}

// headerValue is the Content-Type header value for s.
func (s settings) headerValue() string {
	return s.contentType + "; charset=" + s.encoding
}

// Option overrides one field of the response context. Options passed to
// Send and Error are applied on top of that call's defaults, field by field.
type Option func(*settings)

// WithStatus sets the HTTP status code. Codes outside 100-999 are ignored
// and reported as misuse; zero is ignored silently.
func WithStatus(code int) Option {
	return func(s *settings) {
		switch {
		case code == 0:
		case validStatus(code):
			s.status = code
		default:
			s.rejected = code
		}
	}
}

// validStatus reports whether net/http accepts code in WriteHeader.
func validStatus(code int) bool {
	return code >= 100 && code <= 999
}

// WithContentType sets the media type, without parameters.
func WithContentType(contentType string) Option {
	return func(s *settings) {
		if contentType = strings.TrimSpace(contentType); contentType != "" {
			s.contentType = contentType
			s.explicitType = true
		}
	}
}

// WithEncoding sets the charset advertised in Content-Type.
func WithEncoding(encoding string) Option {
	return func(s *settings) {
		if encoding != "" {
			s.encoding = encoding
		}
	}
}

// WithHeader sets one response header.
func WithHeader(key, value string) Option {
	return func(s *settings) {
		s.header.Set(key, value)
	}
}

// WithHeaders sets several response headers.
func WithHeaders(headers map[string]string) Option {
	return func(s *settings) {
		for k, v := range headers {
			s.header.Set(k, v)
		}
	}
}

// WithLayout enables or disables layout composition for this response.
func WithLayout(use bool) Option {
	return func(s *settings) {
		s.useLayout = use
	}
}

// WithoutLayout disables layout composition for this response.
func WithoutLayout() Option {
	return WithLayout(false)
}

func (s *settings) apply(opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
}

// takeRejected returns and clears a rejected status code.
func (s *settings) takeRejected() int {
	code := s.rejected
	s.rejected = 0
	return code
}
