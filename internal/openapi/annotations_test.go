package openapi

import (
	"strings"
	"testing"
)

func TestParseAnnotations_LineComments(t *testing.T) {
	src := `package provider

// @openapi
// components:
//   schemas:
//     Error:
//       type: object
//       properties:
//         error: { type: string }
func handler() {}

// plain comment, not an annotation
func other() {}
`
	frags, err := ParseAnnotations("handler.go", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("want 1 fragment, got %d", len(frags))
	}
	if frags[0].Line != 3 {
		t.Fatalf("want tag line 3, got %d", frags[0].Line)
	}
	if got := lookupString(frags[0].Doc, "components", "schemas", "Error", "type"); got != "object" {
		t.Fatalf("Error.type: got %q", got)
	}
}

func TestParseAnnotations_JSDocBlock(t *testing.T) {
	src := `/**
 * @openapi
 * /users/{id}:
 *   get:
 *     summary: Get a user
 *     responses:
 *       200:
 *         description: ok
 */
app.get('/users/:id', handler);
`
	frags, err := ParseAnnotations("server.js", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(frags) != 1 {
		t.Fatalf("want 1 fragment, got %d", len(frags))
	}
	op, ok := frags[0].Doc["/users/{id}"].(map[string]any)
	if !ok {
		t.Fatalf("missing path key: %#v", frags[0].Doc)
	}
	get := op["get"].(map[string]any)
	responses := get["responses"].(map[string]any)
	if _, ok := responses["200"]; !ok {
		t.Fatalf("int response key should normalize to \"200\": %#v", responses)
	}
}

func TestParseAnnotations_UntaggedBlockIgnored(t *testing.T) {
	src := "/* just a note\n * components: {}\n */\n"
	frags, err := ParseAnnotations("x.js", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(frags) != 0 {
		t.Fatalf("want no fragments, got %d", len(frags))
	}
}

func TestParseAnnotations_InvalidYAML(t *testing.T) {
	src := "// @openapi\n// paths: [unclosed\n"
	_, err := ParseAnnotations("bad.go", src)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "bad.go:1") {
		t.Fatalf("error should name file and line: %v", err)
	}
}

func TestParseAnnotations_ScalarBodyRejected(t *testing.T) {
	_, err := ParseAnnotations("s.go", "// @openapi\n// just text\n")
	if err == nil || !strings.Contains(err.Error(), "must be a mapping") {
		t.Fatalf("expected mapping error, got %v", err)
	}
}
