package pact

import (
	"fmt"
	"net/http"
	"sort"
)

// EmailPattern is the regex consumers use for email fields.
const EmailPattern = `^[^@\s]+@[^@\s]+\.[^@\s]+$`

const (
	nonEmptyPattern = `^.+$`
	zipPattern      = `^\d{5}(-\d{4})?$`
	tagPattern      = `^[a-z0-9-]+$`
	tierPattern     = `^(gold|silver)$`
	semverPattern   = `^\d+\.\d+\.\d+$`
)

var (
	acceptJSON       = map[string]string{"Accept": "application/json"}
	jsonContentType  = map[string]string{"Content-Type": "application/json; charset=utf-8"}
	scenarioBuilders = map[string]func(consumer, provider string) Pact{
		"good": Good,
		"bad":  Bad,
		"rich": Rich,
		"mrde": MRDE,
	}
)

// Scenario returns the named fixture set.
func Scenario(name, consumer, provider string) (Pact, error) {
	build, ok := scenarioBuilders[name]
	if !ok {
		return Pact{}, fmt.Errorf("unknown pact scenario: %q (known: %v)", name, ScenarioNames())
	}
	return build(consumer, provider), nil
}

// ScenarioNames lists the known scenarios in sorted order.
func ScenarioNames() []string {
	out := make([]string, 0, len(scenarioBuilders))
	for k := range scenarioBuilders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Good agrees with the demo provider: user 123 exists with a boolean
// `active`, user 999 yields a structured 404.
func Good(consumer, provider string) Pact {
	return Pact{
		Consumer: consumer,
		Provider: provider,
		Interactions: []Interaction{
			{
				State:       "User with id 123 exists",
				Description: "a request for user 123 (good)",
				Request:     Request{Method: http.MethodGet, Path: "/users/123", Headers: acceptJSON},
				Response: Response{
					Status:  http.StatusOK,
					Headers: jsonContentType,
					Body: map[string]any{
						"id":     Integer(123),
						"name":   String("Jane Doe"),
						"email":  Regex(EmailPattern, "jane.doe@example.com"),
						"active": Boolean(true),
					},
				},
			},
			{
				State:       "User with id 999 does not exist",
				Description: "a request for user 999 (good)",
				Request:     Request{Method: http.MethodGet, Path: "/users/999", Headers: acceptJSON},
				Response: Response{
					Status:  http.StatusNotFound,
					Headers: jsonContentType,
					Body:    map[string]any{"error": String("Not found")},
				},
			},
		},
	}
}

// Bad expects `active` as a string and a field the provider never sends.
func Bad(consumer, provider string) Pact {
	return Pact{
		Consumer: consumer,
		Provider: provider,
		Interactions: []Interaction{
			{
				State:       "User with id 123 exists",
				Description: "a request for user 123 (bad)",
				Request:     Request{Method: http.MethodGet, Path: "/users/123", Headers: acceptJSON},
				Response: Response{
					Status:  http.StatusOK,
					Headers: jsonContentType,
					Body: map[string]any{
						"id":       Integer(123),
						"name":     String("Alice"),
						"email":    Regex(EmailPattern, "alice@example.com"),
						"active":   Like("true"),
						"mustHave": String("THIS_FIELD_DOES_NOT_EXIST_IN_PROVIDER"),
					},
				},
			},
		},
	}
}

// Rich describes user 123 with one field per matcher kind, plus a 404 that
// carries a request id.
func Rich(consumer, provider string) Pact {
	return Pact{
		Consumer: consumer,
		Provider: provider,
		Interactions: []Interaction{
			{
				State:       "User with id 123 exists",
				Description: "GET user 123 with rich matchers",
				Request:     Request{Method: http.MethodGet, Path: "/users/123", Headers: acceptJSON},
				Response: Response{
					Status:  http.StatusOK,
					Headers: jsonContentType,
					Body: map[string]any{
						"id":            Integer(123),
						"name":          String("Jane Doe"),
						"email":         Regex(EmailPattern, "jane.doe@example.com"),
						"active":        Boolean(true),
						"balance":       Decimal(1234.56),
						"createdAt":     Timestamp("yyyy-MM-dd'T'HH:mm:ssXXX", "2024-07-15T12:34:56+00:00"),
						"birthday":      Date("yyyy-MM-dd", "1990-04-21"),
						"preferredTime": Time("HH:mm:ss", "09:30:00"),
						"userId":        UUID("3fa85f64-5717-4562-b3fc-2c963f66afa6"),
						"address": Like(map[string]any{
							"line1": String("1 Main St"),
							"city":  String("Springfield"),
							"zip":   Regex(zipPattern, "12345"),
						}),
						"roles":    EachLike(String("user"), 2),
						"tags":     EachLike(Regex(tagPattern, "alpha"), 1),
						"nickname": Like(nil),
					},
				},
			},
			{
				State:       "User with id 999 does not exist",
				Description: "GET user 999 returns 404 with error",
				Request:     Request{Method: http.MethodGet, Path: "/users/999", Headers: acceptJSON},
				Response: Response{
					Status:  http.StatusNotFound,
					Headers: jsonContentType,
					Body: map[string]any{
						"error":     String("Not found"),
						"requestId": Regex(nonEmptyPattern, "req-123"),
					},
				},
			},
		},
	}
}

// MRDE covers a broad matcher mix on a separate demo endpoint.
func MRDE(consumer, provider string) Pact {
	return Pact{
		Consumer: consumer,
		Provider: provider,
		Interactions: []Interaction{
			{
				Description: "MRDE-ish payload with broad matcher coverage",
				Request:     Request{Method: http.MethodGet, Path: "/mrde-demo", Headers: acceptJSON},
				Response: Response{
					Status:  http.StatusOK,
					Headers: jsonContentType,
					Body: map[string]any{
						"id":       Integer(101),
						"ok":       Boolean(true),
						"name":     String("Widget"),
						"notEmpty": Regex(nonEmptyPattern, "non-empty"),
						"roles":    EachLike(String("user"), 2),
						"meta": Like(map[string]any{
							"tier":    Regex(tierPattern, "gold"),
							"version": Regex(semverPattern, "1.2.3"),
						}),
					},
				},
			},
		},
	}
}
