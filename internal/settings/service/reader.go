package service

import (
	"strconv"
	"strings"
)

// reader applies the same empty-means-default rule as the typed getters over
// a snapshot of all settings.
type reader map[string]string

func (r reader) str(key, def string) string {
	v := strings.TrimSpace(r[key])
	if v == "" {
		return def
	}
	return v
}

func (r reader) int(key string, def int) int {
	n, err := strconv.Atoi(r.str(key, ""))
	if err != nil {
		return def
	}
	return n
}

func (r reader) bool(key string, def bool) bool {
	b, err := strconv.ParseBool(r.str(key, ""))
	if err != nil {
		return def
	}
	return b
}
