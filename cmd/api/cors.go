package main

import (
	"net/url"
	"strings"
)

// matchCORSOrigin reports whether origin is allowed by any pattern. Patterns
// are "*", an exact origin, or a scheme plus wildcard host such as
// "https://*.example.com", which matches subdomains but not the bare domain.
func matchCORSOrigin(origin string, patterns []string) bool {
	if origin == "" {
		return false
	}
	o, err := url.Parse(origin)
	if err != nil || o.Scheme == "" || o.Host == "" {
		return false
	}
	for _, p := range patterns {
		if p == "*" {
			return true
		}
		if strings.EqualFold(strings.TrimRight(p, "/"), origin) {
			return true
		}
		pu, err := url.Parse(p)
		if err != nil || pu.Host == "" {
			continue
		}
		suffix, ok := strings.CutPrefix(pu.Host, "*.")
		if !ok || !strings.EqualFold(pu.Scheme, o.Scheme) {
			continue
		}
		if strings.HasSuffix(strings.ToLower(o.Host), "."+strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}
