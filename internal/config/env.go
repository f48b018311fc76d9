package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Env is the injected process environment.
type Env map[string]string

// EnvFromOS snapshots os.Environ().
func EnvFromOS() Env {
	env := Env{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

// ConfigError reports a missing or malformed environment variable.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason == "" {
		return "missing env: " + e.Key
	}
	return fmt.Sprintf("invalid env: %s (%s)", e.Key, e.Reason)
}

// Lookup returns the trimmed value of key and whether it is non-empty.
func (e Env) Lookup(key string) (string, bool) {
	v := strings.TrimSpace(e[key])
	return v, v != ""
}

// Require returns the value of key or a *ConfigError when it is unset or empty.
func (e Env) Require(key string) (string, error) {
	v, ok := e.Lookup(key)
	if !ok {
		return "", &ConfigError{Key: key}
	}
	return v, nil
}

// Get returns the value of key or def when it is unset or empty.
func (e Env) Get(key, def string) string {
	if v, ok := e.Lookup(key); ok {
		return v
	}
	return def
}

// First returns the first non-empty value among keys.
func (e Env) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := e.Lookup(k); ok {
			return v, true
		}
	}
	return "", false
}

// IsTrue reports whether key is set to the literal "true".
func (e Env) IsTrue(key string) bool {
	return e[key] == "true"
}

// IsTrueFold is IsTrue ignoring case.
func (e Env) IsTrueFold(key string) bool {
	return strings.EqualFold(e[key], "true")
}

func (e Env) clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// LoadDotenv merges the variables of a .env file into env. Variables that
// are already present win. A missing file is not an error.
func LoadDotenv(env Env, path string) (Env, error) {
	if path == "" {
		return env, nil
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return env, nil
		}
		return env, fmt.Errorf("failed to read env file: %w", err)
	}
	out := env.clone()
	for k, v := range vals {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out, nil
}
