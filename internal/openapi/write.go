package openapi

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// topLevelOrder fixes the position of the well-known document keys; the
// rest follow in sorted order.
var topLevelOrder = []string{"openapi", "info", "paths", "components"}

// Marshal renders doc as deterministic YAML.
func Marshal(doc map[string]any) ([]byte, error) {
	top := &yaml.Node{Kind: yaml.MappingNode}
	placed := map[string]bool{}
	for _, k := range topLevelOrder {
		if v, ok := doc[k]; ok {
			top.Content = append(top.Content, keyNode(k), valueNode(v))
			placed[k] = true
		}
	}
	for _, k := range sortedKeys(doc) {
		if !placed[k] {
			top.Content = append(top.Content, keyNode(k), valueNode(doc[k]))
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(top); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	return append(out, '\n'), nil
}

// Write renders doc to path, creating parent directories.
func Write(path string, doc map[string]any) error {
	b, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func keyNode(k string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
}

func valueNode(v any) *yaml.Node {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case map[string]any:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range sortedKeys(x) {
			n.Content = append(n.Content, keyNode(k), valueNode(x[k]))
		}
		return n
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range x {
			n.Content = append(n.Content, valueNode(it))
		}
		return n
	default:
		n := &yaml.Node{}
		_ = n.Encode(x)
		return n
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
