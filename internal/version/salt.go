package version

import (
	"strings"
	"time"
)

const stampLayout = "20060102150405"

// Stamp formats t as a 14-digit UTC timestamp (YYYYMMDDHHmmss).
func Stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// Resolved is the final version handed to the broker.
type Resolved struct {
	Base  string
	Salt  string
	Stamp string
	Final string
}

// Unsalted wraps a base version that needs no salting.
func Unsalted(base string) Resolved {
	return Resolved{Base: base, Final: base}
}

// Salt appends "-<salt>-<stamp>" to base when an explicit suffix is given or
// the branch is not the trunk branch.
func Salt(base, suffix, branch, trunk string, now time.Time) Resolved {
	suffix = strings.TrimSpace(suffix)
	salt := ""
	switch {
	case suffix != "":
		salt = suffix
	case branch != trunk:
		salt = branch
	default:
		return Unsalted(base)
	}
	stamp := Stamp(now)
	return Resolved{
		Base:  base,
		Salt:  salt,
		Stamp: stamp,
		Final: base + "-" + salt + "-" + stamp,
	}
}
