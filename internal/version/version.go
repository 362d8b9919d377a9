// Package version carries build metadata stamped in with -ldflags, e.g.
//
//	-X github.com/haythamforever/HonorHub/internal/version.Tag=v1.4.0
//	-X github.com/haythamforever/HonorHub/internal/version.Commit=$(git rev-parse --short HEAD)
package version

import "runtime"

var (
	Tag    = "dev"
	Commit = ""
	Date   = ""
)

type Info struct {
	Tag       string `json:"tag"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{Tag: String(), Commit: Commit, Date: Date, GoVersion: runtime.Version()}
}

// String is the tag, suffixed with the short commit when one was stamped.
func String() string {
	tag := Tag
	if tag == "" {
		tag = "dev"
	}
	if Commit == "" {
		return tag
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return tag + "+" + c
}
