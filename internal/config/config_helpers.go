package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

func requireStringField(v cue.Value, name string) (string, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return "", fmt.Errorf("missing required field: %s", name)
	}
	if f.Kind() != cue.StringKind {
		return "", fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	var s string
	if err := f.Decode(&s); err != nil {
		return "", fmt.Errorf("invalid value for %s: %v", name, err)
	}
	return s, nil
}

// optString decodes an optional string field into dst. A present field of
// the wrong kind is an error.
func optString(v cue.Value, name string, dst *string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", name)
	}
	return f.Decode(dst)
}

func optInt(v cue.Value, name string, dst *int) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.IntKind {
		return fmt.Errorf("invalid type for field: %s (expected int)", name)
	}
	return f.Decode(dst)
}

func optStringList(v cue.Value, name string, dst *[]string) error {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.ListKind {
		return fmt.Errorf("invalid type for field: %s (expected list of strings)", name)
	}
	var out []string
	if err := f.Decode(&out); err != nil {
		return fmt.Errorf("invalid type for field: %s (expected list of strings)", name)
	}
	*dst = out
	return nil
}
