// Package pact writes consumer contract files in pact specification v3
// layout.
package pact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SpecificationVersion is recorded in every written file's metadata.
const SpecificationVersion = "3.0.0"

// Matcher is an example value plus the rule the provider must satisfy.
type Matcher struct {
	Example any
	Rule    map[string]any
}

// Integer matches any integer.
func Integer(example int) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "integer"}}
}

// String matches any string.
func String(example string) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "type"}}
}

// Boolean matches any boolean.
func Boolean(example bool) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "type"}}
}

// Like matches any value of the example's type.
func Like(example any) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "type"}}
}

// Regex matches strings against pattern.
func Regex(pattern, example string) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "regex", "regex": pattern}}
}

// Decimal matches any number with a fractional part.
func Decimal(example float64) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "decimal"}}
}

// Timestamp matches date-times written in format (Java date pattern syntax).
func Timestamp(format, example string) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "timestamp", "format": format}}
}

// Date matches dates written in format.
func Date(format, example string) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "date", "format": format}}
}

// Time matches times of day written in format.
func Time(format, example string) Matcher {
	return Matcher{Example: example, Rule: map[string]any{"match": "time", "format": format}}
}

// UUIDPattern matches lower-case hyphenated UUIDs.
const UUIDPattern = `^[0-9a-f]{8}(-[0-9a-f]{4}){3}-[0-9a-f]{12}$`

// UUID matches lower-case hyphenated UUIDs.
func UUID(example string) Matcher {
	return Regex(UUIDPattern, example)
}

// EachLike matches an array of at least min elements, each shaped like
// template. The example holds min copies of template.
func EachLike(template any, min int) Matcher {
	if min < 1 {
		min = 1
	}
	items := make([]any, min)
	for i := range items {
		items[i] = template
	}
	return Matcher{Example: items, Rule: map[string]any{"match": "type", "min": min}}
}

// Request is the HTTP call the consumer makes.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
}

// Response bodies are JSON objects whose values may be Matchers, nested
// objects, []any arrays or plain values.
type Response struct {
	Status  int
	Headers map[string]string
	Body    map[string]any
}

// Interaction pairs a request with the response expected in State.
type Interaction struct {
	State       string
	Description string
	Request     Request
	Response    Response
}

// Pact is every interaction between one consumer and one provider.
type Pact struct {
	Consumer     string
	Provider     string
	Interactions []Interaction
}

// FileName is the conventional file name for p.
func (p Pact) FileName() string {
	return fmt.Sprintf("%s-%s.json", p.Consumer, p.Provider)
}

type ruleSet struct {
	Combine  string           `json:"combine"`
	Matchers []map[string]any `json:"matchers"`
}

type fileRequest struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers,omitempty"`
}

type fileResponse struct {
	Status        int                           `json:"status"`
	Headers       map[string]string             `json:"headers,omitempty"`
	Body          map[string]any                `json:"body,omitempty"`
	MatchingRules map[string]map[string]ruleSet `json:"matchingRules,omitempty"`
}

type providerState struct {
	Name string `json:"name"`
}

type fileInteraction struct {
	Description    string          `json:"description"`
	ProviderStates []providerState `json:"providerStates,omitempty"`
	Request        fileRequest     `json:"request"`
	Response       fileResponse    `json:"response"`
}

type participant struct {
	Name string `json:"name"`
}

type file struct {
	Consumer     participant       `json:"consumer"`
	Provider     participant       `json:"provider"`
	Interactions []fileInteraction `json:"interactions"`
	Metadata     map[string]any    `json:"metadata"`
}

// Marshal renders p as indented pact v3 JSON.
func Marshal(p Pact) ([]byte, error) {
	f := file{
		Consumer:     participant{Name: p.Consumer},
		Provider:     participant{Name: p.Provider},
		Interactions: make([]fileInteraction, 0, len(p.Interactions)),
		Metadata: map[string]any{
			"pactSpecification": map[string]string{"version": SpecificationVersion},
		},
	}
	for _, it := range p.Interactions {
		rules := map[string]ruleSet{}
		body := expand("$", it.Response.Body, rules)
		fi := fileInteraction{
			Description: it.Description,
			Request: fileRequest{
				Method:  it.Request.Method,
				Path:    it.Request.Path,
				Headers: it.Request.Headers,
			},
			Response: fileResponse{
				Status:  it.Response.Status,
				Headers: it.Response.Headers,
			},
		}
		if body != nil {
			fi.Response.Body = body.(map[string]any)
		}
		if it.State != "" {
			fi.ProviderStates = []providerState{{Name: it.State}}
		}
		if len(rules) > 0 {
			fi.Response.MatchingRules = map[string]map[string]ruleSet{"body": rules}
		}
		f.Interactions = append(f.Interactions, fi)
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// expand replaces matchers in v with their examples and records a rule for
// each one under its JSON path.
func expand(path string, v any, rules map[string]ruleSet) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Matcher:
		rules[path] = ruleSet{Combine: "AND", Matchers: []map[string]any{x.Rule}}
		return expand(path, x.Example, rules)
	case map[string]any:
		if x == nil {
			return nil
		}
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = expand(path+"."+k, vv, rules)
		}
		return out
	case []any:
		// Every element shares the wildcard path.
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = expand(path+"[*]", vv, rules)
		}
		return out
	default:
		return v
	}
}

// Write writes p to dir/FileName(), creating dir, and returns the path.
func Write(dir string, p Pact) (string, error) {
	b, err := Marshal(p)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, p.FileName())
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
