package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// DefaultDevHeader is the header a development client uses to choose its
// identity.
const DefaultDevHeader = "x-dev-ip"

// IdentityFunc extracts the rate limit identity from a request.
type IdentityFunc func(r *http.Request) string

// RemoteIP returns the host part of r.RemoteAddr.
func RemoteIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	addr = strings.Trim(addr, "[]")
	if zone := strings.Index(addr, "%"); zone != -1 {
		addr = addr[:zone]
	}
	return addr
}

// DevIdentity prefers the value of header when development is true and the
// header is present, and falls back to RemoteIP otherwise.
func DevIdentity(development bool, header string) IdentityFunc {
	if !development || header == "" {
		return RemoteIP
	}
	return func(r *http.Request) string {
		if v := strings.TrimSpace(r.Header.Get(header)); v != "" {
			return v
		}
		return RemoteIP(r)
	}
}
