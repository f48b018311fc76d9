// Package buildinfo exposes version metadata for the CLI. Values are set at
// build time with -ldflags, e.g.
//
//	-ldflags "-X 'github.com/nickldimartino/bdct/internal/buildinfo.Version=1.2.3'"
//
// When Commit is unset, the VCS revision recorded by the Go toolchain is used.
package buildinfo

import (
	"runtime/debug"
	"strings"
)

var (
	// Version is the semantic version or custom string.
	Version = "dev"
	// Commit is the VCS commit hash (optional).
	Commit = ""
	// Date is the build time in RFC3339 or similar (optional).
	Date = ""
	// BuiltBy is an optional builder identifier (optional).
	BuiltBy = ""
)

var readBuildInfo = debug.ReadBuildInfo

// Revision returns Commit, or the embedded vcs.revision setting.
func Revision() string {
	if Commit != "" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// Summary returns a concise single-line version string.
func Summary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	parts := make([]string, 0, 2)
	if c := Revision(); c != "" {
		if len(c) > 7 {
			c = c[:7]
		}
		parts = append(parts, "commit="+c)
	}
	if Date != "" {
		parts = append(parts, "date="+Date)
	}
	if len(parts) > 0 {
		v += " (" + strings.Join(parts, ", ") + ")"
	}
	return v
}
