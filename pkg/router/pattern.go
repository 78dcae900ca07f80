package router

import (
	"fmt"
	"strings"
)

// endpointPattern joins a folder URI and an endpoint path under the api
// segment and converts :name segments to chi parameters.
//
//	endpointPattern("/", "add")            // "/api/add"
//	endpointPattern("/users", "/add/")     // "/users/api/add"
//	endpointPattern("/users", "/edit/:id") // "/users/api/edit/{id}"
func endpointPattern(uri, p string) string {
	if !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimSuffix(p, "/")
	return chiParams(uri + baseAPI + p)
}

// chiParams rewrites ":name" segments as "{name}".
func chiParams(pattern string) string {
	if !strings.Contains(pattern, ":") {
		return pattern
	}
	segs := strings.Split(pattern, "/")
	for i, s := range segs {
		if len(s) > 1 && s[0] == ':' {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}

// normalizePattern erases parameter names so that "/a/{id}" and "/a/{key}"
// compare equal.
func normalizePattern(pattern string) string {
	segs := strings.Split(pattern, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
			segs[i] = "{}"
		}
	}
	return strings.Join(segs, "/")
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
