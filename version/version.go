// Package version reports the engine build identity, resolved from -ldflags
// overrides or the binary's embedded VCS metadata:
//
//	go build -ldflags "-X github.com/openscenario/pipekit/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = ""
)

// Info is the resolved build identity of the running binary.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Go      string `json:"go"`
	Dirty   bool   `json:"dirty"`
}

// Resolve returns the build identity, filling unset fields from the
// binary's debug build info.
func Resolve() Info {
	info := Info{Version: Version, Commit: Commit}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.Go = build.GoVersion
	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = setting.Value
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// Short returns a compact version string for log fields.
func Short() string {
	info := Resolve()
	parts := []string{info.Version}
	if info.Commit != "" {
		parts = append(parts, info.Commit)
	}
	if info.Dirty {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "-")
}

// String returns the full human-readable form.
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		s = fmt.Sprintf("%s (%s)", s, i.Commit)
	}
	if i.Go != "" {
		s += " " + i.Go
	}
	return s
}
