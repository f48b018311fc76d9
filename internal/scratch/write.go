// Package scratch persists small hand-off files for later pipeline stages.
package scratch

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Well-known files under the scratch directory.
const (
	ConsumerVersionFile = "last-consumer-version.txt"
	ProviderVersionFile = "last-provider-version.txt"
	SelfVerifyFile      = "provider-self-verify.json"
)

// Path joins dir and name.
func Path(dir, name string) string {
	return filepath.Join(dir, name)
}

// Write stores the trimmed content at dir/name, creating dir and replacing
// any previous content. It returns the written path.
func Write(dir, name, content string) (string, error) {
	return writeBytes(dir, name, []byte(strings.TrimSpace(content)))
}

// WriteJSON stores v as indented JSON at dir/name.
func WriteJSON(dir, name string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return writeBytes(dir, name, buf.Bytes())
}

func writeBytes(dir, name string, b []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := Path(dir, name)
	return p, os.WriteFile(p, b, 0o644)
}
