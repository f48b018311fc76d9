package gate

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func requirePOSIXShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("runner tests require POSIX shell")
	}
}

func bufferedRunner() (*ExecRunner, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &ExecRunner{Stdout: out, Stderr: out, TermGrace: 50 * time.Millisecond}, out
}

func TestExecRunner_Success(t *testing.T) {
	requirePOSIXShell(t)
	r, out := bufferedRunner()
	res, err := r.Run(context.Background(), Invocation{Program: "sh", Args: []string{"-c", "printf ok"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Succeeded() || out.String() != "ok" {
		t.Fatalf("unexpected result: %+v %q", res, out.String())
	}
}

func TestExecRunner_PropagatesExitCode(t *testing.T) {
	requirePOSIXShell(t)
	r, _ := bufferedRunner()
	res, err := r.Run(context.Background(), Invocation{Program: "sh", Args: []string{"-c", "exit 3"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExitCode != 3 || res.Succeeded() {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestExecRunner_EnvOverlay(t *testing.T) {
	requirePOSIXShell(t)
	r, out := bufferedRunner()
	inv := Invocation{
		Program: "sh",
		Args:    []string{"-c", "printf %s \"$PACT_BROKER_DISABLE_SSL_VERIFICATION\""},
		Env:     map[string]string{"PACT_BROKER_DISABLE_SSL_VERIFICATION": "true"},
	}
	if _, err := r.Run(context.Background(), inv); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.String() != "true" {
		t.Fatalf("overlay not applied: %q", out.String())
	}
}

func TestExecRunner_NotFound(t *testing.T) {
	r, _ := bufferedRunner()
	prog := filepath.Join(t.TempDir(), "no-such-broker")
	_, err := r.Run(context.Background(), Invocation{Program: prog})
	var ce *CommandError
	if !errors.As(err, &ce) || !ce.NotFound {
		t.Fatalf("expected not-found CommandError, got %v", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestExecRunner_Timeout(t *testing.T) {
	requirePOSIXShell(t)
	r, _ := bufferedRunner()
	r.Timeout = 30 * time.Millisecond
	res, err := r.Run(context.Background(), Invocation{Program: "sh", Args: []string{"-c", "exec sleep 5"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.TimedOut || res.ExitCode != ExitTimedOut {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestApplyEnvOverlay_Replaces(t *testing.T) {
	got := applyEnvOverlay([]string{"A=1", "B=2"}, map[string]string{"B": "3"})
	joined := strings.Join(got, ",")
	if strings.Contains(joined, "B=2") || !strings.Contains(joined, "B=3") || !strings.Contains(joined, "A=1") {
		t.Fatalf("unexpected env: %v", got)
	}
}

func TestRecordingRunner_Script(t *testing.T) {
	r := &RecordingRunner{ExitCodes: []int{0, 3}}
	inv := Invocation{Program: "pact-broker", Args: []string{"a"}}
	first, _ := r.Run(context.Background(), inv)
	second, _ := r.Run(context.Background(), inv)
	third, _ := r.Run(context.Background(), inv)
	if first.ExitCode != 0 || second.ExitCode != 3 || third.ExitCode != 3 {
		t.Fatalf("unexpected script: %v %v %v", first, second, third)
	}
	if len(r.Calls()) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(r.Calls()))
	}
}
