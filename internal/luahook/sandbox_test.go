package luahook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"info": map[string]any{"title": "API"},
		"components": map[string]any{
			"schemas": map[string]any{
				"User": map[string]any{
					"required": []any{"id", "active"},
					"properties": map[string]any{
						"id":     map[string]any{"type": "integer", "example": 123},
						"active": map[string]any{"type": "boolean"},
					},
				},
			},
		},
		"security": map[string]any{},
	}
}

func TestTransform_MutateInPlace(t *testing.T) {
	code := `doc.components.schemas.User.properties.active.type = "string"`
	out, err := Sandbox{}.Transform(context.Background(), "inline", code, sampleDoc())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	user := out["components"].(map[string]any)["schemas"].(map[string]any)["User"].(map[string]any)
	props := user["properties"].(map[string]any)
	if props["active"].(map[string]any)["type"] != "string" {
		t.Fatalf("mutation not applied: %#v", props)
	}
	if props["id"].(map[string]any)["example"] != 123 {
		t.Fatalf("integers must round-trip as int: %#v", props["id"])
	}
	req, ok := user["required"].([]any)
	if !ok || len(req) != 2 || req[0] != "id" {
		t.Fatalf("list not preserved: %#v", user["required"])
	}
	if sec, ok := out["security"].(map[string]any); !ok || len(sec) != 0 {
		t.Fatalf("empty object must stay an object: %#v", out["security"])
	}
}

func TestTransform_ReturnReplacement(t *testing.T) {
	out, err := Sandbox{}.Transform(context.Background(), "inline", `return { openapi = "3.1.0" }`, sampleDoc())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if len(out) != 1 || out["openapi"] != "3.1.0" {
		t.Fatalf("unexpected result: %#v", out)
	}
}

func TestTransform_NonTableResult(t *testing.T) {
	_, err := Sandbox{}.Transform(context.Background(), "inline", `return 42`, sampleDoc())
	if err == nil || !strings.Contains(err.Error(), "expected a table result") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransform_NoFilesystem(t *testing.T) {
	for _, code := range []string{`io.open("/etc/passwd")`, `os.remove("x")`, `dofile("x.lua")`} {
		if _, err := (Sandbox{}).Transform(context.Background(), "inline", code, sampleDoc()); err == nil {
			t.Fatalf("expected %q to fail in sandbox", code)
		}
	}
}

func TestTransform_Timeout(t *testing.T) {
	_, err := Sandbox{Timeout: 20 * time.Millisecond}.Transform(context.Background(), "inline", `while true do end`, sampleDoc())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestTransform_EmptyCodeIsIdentity(t *testing.T) {
	in := sampleDoc()
	out, err := Sandbox{}.Transform(context.Background(), "inline", "  ", in)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if out["info"].(map[string]any)["title"] != "API" {
		t.Fatalf("unexpected result: %#v", out)
	}
}
