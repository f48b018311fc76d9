package openapi

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestMarshal_TopLevelOrder(t *testing.T) {
	doc := map[string]any{
		"tags":       []any{map[string]any{"name": "users"}},
		"components": map[string]any{},
		"paths": map[string]any{
			"/users/{id}": map[string]any{"get": map[string]any{"summary": "x"}},
			"/health":     map[string]any{"get": map[string]any{"summary": "h"}},
		},
		"info":    map[string]any{"version": "1.0.0", "title": "T"},
		"openapi": "3.0.3",
	}
	b1, err := Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b2, _ := Marshal(doc)
	if !bytes.Equal(b1, b2) {
		t.Fatalf("not rewrite-stable")
	}
	want := "openapi: 3.0.3\n" +
		"info:\n  title: T\n  version: 1.0.0\n" +
		"paths:\n  /health:\n    get:\n      summary: h\n  /users/{id}:\n    get:\n      summary: x\n" +
		"components: {}\n" +
		"tags:\n  - name: users\n"
	if string(b1) != want {
		t.Fatalf("unexpected output\nwant:\n%s\ngot:\n%s", want, string(b1))
	}
}

func TestMarshal_NumericStringKeysStayQuoted(t *testing.T) {
	b, err := Marshal(map[string]any{"responses": map[string]any{"200": map[string]any{"description": "ok"}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := "responses:\n  \"200\":\n    description: ok\n"
	if string(b) != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, string(b))
	}
}

func TestWrite_CreatesParents(t *testing.T) {
	p := filepath.Join(t.TempDir(), "openapi", "provider.generated.yaml")
	if err := Write(p, Base()); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("openapi: 3.0.3\ninfo:\n")) {
		t.Fatalf("unexpected content:\n%s", b)
	}
}
