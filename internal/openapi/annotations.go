// Package openapi builds the provider's OpenAPI document from @openapi
// comment annotations in source files.
package openapi

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const annotationTag = "@openapi"

// Fragment is one parsed @openapi annotation.
type Fragment struct {
	File string
	Line int
	Doc  map[string]any
}

// extractBlocks returns the raw YAML bodies of every @openapi annotation in
// src, along with the 1-based line of each tag. Both `//` line comments
// and `/* ... */` block comments (with optional leading `*`) are recognized.
func extractBlocks(src string) ([]string, []int) {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	var bodies []string
	var at []int

	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(trimmed, "//") && strings.TrimSpace(strings.TrimPrefix(trimmed, "//")) == annotationTag:
			start := i + 1
			var body []string
			i++
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if !strings.HasPrefix(t, "//") {
					break
				}
				body = append(body, stripLinePrefix(lines[i]))
				i++
			}
			bodies = append(bodies, dedent(body))
			at = append(at, start)
		case strings.HasPrefix(trimmed, "/*"):
			end := i
			for end < len(lines) && !strings.Contains(lines[end], "*/") {
				end++
			}
			if end == len(lines) {
				end = len(lines) - 1
			}
			bodies, at = collectBlock(lines, i, end, bodies, at)
			i = end + 1
		default:
			i++
		}
	}
	return bodies, at
}

// collectBlock scans a block comment spanning lines[from..to] for a tag
// line and keeps everything after it up to the closing delimiter.
func collectBlock(lines []string, from, to int, bodies []string, at []int) ([]string, []int) {
	tagged := false
	tagLine := 0
	var body []string
	for j := from; j <= to; j++ {
		l := lines[j]
		if j == from {
			l = l[strings.Index(l, "/*")+2:]
			l = strings.TrimPrefix(l, "*")
		}
		if k := strings.Index(l, "*/"); k >= 0 {
			l = l[:k]
		}
		content := stripBlockPrefix(l)
		if !tagged {
			if strings.TrimSpace(content) == annotationTag {
				tagged = true
				tagLine = j + 1
			}
			continue
		}
		body = append(body, content)
	}
	if tagged {
		bodies = append(bodies, dedent(body))
		at = append(at, tagLine)
	}
	return bodies, at
}

func stripLinePrefix(l string) string {
	s := strings.TrimLeft(l, " \t")
	s = strings.TrimPrefix(s, "//")
	return strings.TrimPrefix(s, " ")
}

func stripBlockPrefix(l string) string {
	s := strings.TrimLeft(l, " \t")
	if strings.HasPrefix(s, "*") {
		s = strings.TrimPrefix(s, "*")
		return strings.TrimPrefix(s, " ")
	}
	return l
}

// dedent removes the indentation shared by all non-blank lines.
func dedent(lines []string) string {
	minIndent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " "))
		if minIndent < 0 || n < minIndent {
			minIndent = n
		}
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, l[minIndent:])
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}

// ParseAnnotations extracts and decodes every annotation in src.
func ParseAnnotations(file, src string) ([]Fragment, error) {
	bodies, at := extractBlocks(src)
	out := make([]Fragment, 0, len(bodies))
	for i, body := range bodies {
		var raw any
		if err := yaml.Unmarshal([]byte(body), &raw); err != nil {
			return nil, fmt.Errorf("%s:%d: invalid @openapi YAML: %v", file, at[i], err)
		}
		if raw == nil {
			continue
		}
		doc, ok := normalize(raw).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s:%d: @openapi annotation must be a mapping", file, at[i])
		}
		out = append(out, Fragment{File: file, Line: at[i], Doc: doc})
	}
	return out, nil
}

// normalize converts yaml.v3 decode output so every mapping has string keys.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, vv := range x {
			x[k] = normalize(vv)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			m[fmt.Sprint(k)] = normalize(vv)
		}
		return m
	case []any:
		for i, vv := range x {
			x[i] = normalize(vv)
		}
		return x
	default:
		return v
	}
}
