package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/nickldimartino/bdct/internal/operation"
)

func TestExitCode(t *testing.T) {
	broker := &operation.ExitError{Code: 7, Err: errors.New("pact-broker exited with status 7")}
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"plain", errors.New("boom"), 1},
		{"direct", broker, 7},
		{"wrapped", fmt.Errorf("can-i-deploy: %w", broker), 7},
		{"zero code", &operation.ExitError{Code: 0, Err: errors.New("odd")}, 1},
	}
	for _, tc := range cases {
		if got := exitCode(tc.err); got != tc.want {
			t.Fatalf("%s: want %d got %d", tc.name, tc.want, got)
		}
	}
}
