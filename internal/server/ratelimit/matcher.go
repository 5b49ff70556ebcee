package ratelimit

import (
	"strings"
)

// exempt routes are never limited.
var exempt = map[string]bool{
	"GET /health":  true,
	"GET /metrics": true,
}

// unlimited is returned for exempt routes.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration that applies to a request, or nil.
// Exact and templated paths win over prefix entries (paths ending in "/").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if exempt[method+" "+path] {
		e := unlimited
		return &e
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && matchTemplate(c.Path, path) {
			return c
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}

	return nil
}

// matchTemplate compares path segments; a "{name}" segment matches any non-empty segment.
func matchTemplate(template, path string) bool {
	if template == path {
		return true
	}
	if !strings.Contains(template, "{") {
		return false
	}
	want := strings.Split(strings.Trim(template, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}
