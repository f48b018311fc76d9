// Package testutil holds helpers shared by end-to-end tests.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ModuleRoot walks up from the working directory to the directory holding
// go.mod.
func ModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

// FakeCommand writes an executable POSIX shell script named name into dir.
// The script appends its arguments, one per line, to $FAKE_ARGS_FILE and
// exits with $FAKE_EXIT (default 0).
func FakeCommand(dir, name string) (string, error) {
	if runtime.GOOS == "windows" {
		return "", errors.New("fake commands need a POSIX shell")
	}
	script := strings.Join([]string{
		"#!/bin/sh",
		`if [ -n "$FAKE_ARGS_FILE" ]; then`,
		`  for a in "$@"; do printf '%s\n' "$a" >> "$FAKE_ARGS_FILE"; done`,
		"fi",
		`exit "${FAKE_EXIT:-0}"`,
		"",
	}, "\n")
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(script), 0o755); err != nil {
		return "", err
	}
	return p, nil
}
