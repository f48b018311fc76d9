package version

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source identifies where a version candidate came from.
type Source int

const (
	Explicit Source = iota
	File
	VCS
	Timestamp
)

func (s Source) String() string {
	switch s {
	case Explicit:
		return "explicit"
	case File:
		return "file"
	case VCS:
		return "vcs"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Policy controls what happens when a version file is set but unreadable.
type Policy string

const (
	PolicyFail Policy = "fail"
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFail, PolicySkip:
		return Policy(s), nil
	}
	return "", fmt.Errorf("invalid version file policy: %q", s)
}

// TimeFormat selects the rendering of the timestamp fallback.
type TimeFormat int

const (
	TimeFormatMillis TimeFormat = iota
	TimeFormatCompact
)

// Step is one entry of a derivation chain.
type Step struct {
	Source Source
	// Key is the environment variable holding the value (Explicit) or the
	// path (File). Unused for VCS and Timestamp.
	Key         string
	OnFileError Policy
	Format      TimeFormat
}

// Candidate is the winning step of a chain.
type Candidate struct {
	Source Source
	Key    string
	Value  string
}

// ErrNoVersion is returned when every step of the chain came up empty.
var ErrNoVersion = errors.New("no version resolved")

// FileError reports a version file that is set but could not be read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to read version file: %s", e.Path)
}

func (e *FileError) Unwrap() error { return e.Err }

// Revisioner answers the short identifier of the current checkout.
type Revisioner interface {
	ShortRevision() (string, error)
}

// Deriver evaluates derivation chains. Zero fields fall back to the OS
// file reader and the wall clock; a nil VCS makes VCS steps absent.
type Deriver struct {
	ReadFile func(string) ([]byte, error)
	VCS      Revisioner
	Now      func() time.Time
}

func (d Deriver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deriver) readFile(path string) ([]byte, error) {
	if d.ReadFile != nil {
		return d.ReadFile(path)
	}
	return os.ReadFile(path)
}

// Derive walks the chain in order and returns the first usable value.
func (d Deriver) Derive(env map[string]string, chain []Step) (Candidate, error) {
	for _, st := range chain {
		v, err := d.evaluate(env, st)
		if err != nil {
			return Candidate{}, err
		}
		if v != "" {
			return Candidate{Source: st.Source, Key: st.Key, Value: v}, nil
		}
	}
	return Candidate{}, ErrNoVersion
}

func (d Deriver) evaluate(env map[string]string, st Step) (string, error) {
	switch st.Source {
	case Explicit:
		return usable(env[st.Key]), nil
	case File:
		path := strings.TrimSpace(env[st.Key])
		if path == "" {
			return "", nil
		}
		b, err := d.readFile(path)
		if err != nil {
			if st.OnFileError == PolicySkip {
				return "", nil
			}
			return "", &FileError{Path: path, Err: err}
		}
		return usable(string(b)), nil
	case VCS:
		if d.VCS == nil {
			return "", nil
		}
		rev, err := d.VCS.ShortRevision()
		if err != nil {
			return "", nil
		}
		return usable(rev), nil
	case Timestamp:
		t := d.now()
		if st.Format == TimeFormatCompact {
			return Stamp(t), nil
		}
		return strconv.FormatInt(t.UnixMilli(), 10), nil
	}
	return "", nil
}

// usable trims v and drops the "local" placeholder.
func usable(v string) string {
	s := strings.TrimSpace(v)
	if strings.EqualFold(s, "local") {
		return ""
	}
	return s
}
