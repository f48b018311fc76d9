package openapi

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nickldimartino/bdct/internal/logging"
	"github.com/nickldimartino/bdct/internal/luahook"
)

//go:embed bad_demo.lua
var badDemoScript string

const (
	Version     = "3.0.3"
	Title       = "BDCT-JS Provider"
	InfoVersion = "1.0.0"
	Description = "OpenAPI generated from JSDoc for Bi-Directional Contract Testing demos."
)

// Base returns the definition every generated document starts from.
func Base() map[string]any {
	return map[string]any{
		"openapi": Version,
		"info": map[string]any{
			"title":       Title,
			"version":     InfoVersion,
			"description": Description,
		},
	}
}

// Merge deep-merges src into dst. Mappings merge key by key; any other
// value in src replaces the one in dst.
func Merge(dst, src map[string]any) map[string]any {
	for k, sv := range src {
		sm, sIsMap := sv.(map[string]any)
		dm, dIsMap := dst[k].(map[string]any)
		if sIsMap && dIsMap {
			dst[k] = Merge(dm, sm)
			continue
		}
		dst[k] = sv
	}
	return dst
}

// liftPaths moves top-level keys that look like routes ("/users/{id}")
// under "paths", so annotations may declare a path item directly.
func liftPaths(frag map[string]any) map[string]any {
	out := map[string]any{}
	paths := map[string]any{}
	for k, v := range frag {
		if strings.HasPrefix(k, "/") {
			paths[k] = v
			continue
		}
		out[k] = v
	}
	if len(paths) > 0 {
		out = Merge(out, map[string]any{"paths": paths})
	}
	return out
}

// Options drives Generate.
type Options struct {
	// Root is the directory sources and .gitignore files are resolved from.
	Root    string
	Sources []string
	// Bad applies the bundled failure-demo mutation.
	Bad bool
	// Transform is an optional Lua snippet applied last.
	Transform        string
	TransformTimeout time.Duration
	Logger           *slog.Logger
}

// Generate scans the sources and builds the document.
func Generate(ctx context.Context, opts Options) (map[string]any, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	frags, err := Scan(root, opts.Sources)
	if err != nil {
		return nil, err
	}
	doc := Base()
	for _, f := range frags {
		log.Debug("merging annotation", "file", f.File, "line", f.Line)
		doc = Merge(doc, liftPaths(f.Doc))
	}

	sb := luahook.Sandbox{Timeout: opts.TransformTimeout}
	if opts.Bad {
		doc, err = sb.Transform(ctx, "bad-demo", badDemoScript, doc)
		if err != nil {
			return nil, err
		}
		if lookupString(doc, "components", "schemas", "User", "properties", "active", "type") != "string" {
			log.Warn("could not apply BAD mutation: components.schemas.User.properties.active not found")
		}
	}
	if opts.Transform != "" {
		doc, err = sb.Transform(ctx, "openapi.transform", opts.Transform, doc)
		if err != nil {
			return nil, err
		}
	}
	if _, ok := doc["openapi"].(string); !ok {
		return nil, errors.New("generated document has no openapi version")
	}
	return doc, nil
}

func lookupString(doc map[string]any, path ...string) string {
	var cur any = doc
	for _, p := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[p]
	}
	s, _ := cur.(string)
	return s
}
