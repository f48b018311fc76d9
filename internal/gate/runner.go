// Package gate invokes the external broker CLIs and reports their exit
// status.
package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// Exit statuses reported when the runner stops the command itself.
const (
	// ExitTimedOut matches coreutils timeout(1).
	ExitTimedOut = 124
	// ExitCancelled matches a shell interrupted by SIGINT.
	ExitCancelled = 130
)

const defaultTermGrace = 5 * time.Second

// Invocation is a fully assembled external command.
type Invocation struct {
	Program string
	Args    []string
	// Env is overlaid on the calling process environment.
	Env map[string]string
}

// Result is the outcome of a command that started.
type Result struct {
	ExitCode int
	// TimedOut is set when the runner stopped the command.
	TimedOut bool
}

// Succeeded reports a zero exit status.
func (r Result) Succeeded() bool { return r.ExitCode == 0 && !r.TimedOut }

// CommandError reports a command that could not be located or started.
type CommandError struct {
	Program  string
	NotFound bool
	Err      error
}

func (e *CommandError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("program %s not found", e.Program)
	}
	return fmt.Sprintf("program %s start failed", e.Program)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes invocations. Implementations return an error only when the
// command could not run; a non-zero exit is a Result.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ExecRunner runs commands as subprocesses sharing the caller's standard
// streams. A zero Timeout waits for the process indefinitely.
type ExecRunner struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Timeout   time.Duration
	TermGrace time.Duration
}

// NewExecRunner returns a runner wired to os.Stdin/Stdout/Stderr.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Timeout: timeout,
	}
}

// Run starts inv and blocks until it exits, the timeout expires or ctx is
// cancelled.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	cmd := exec.Command(inv.Program, inv.Args...)
	cmd.Env = applyEnvOverlay(os.Environ(), inv.Env)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		var ee *exec.Error
		if errors.As(err, &ee) || errors.Is(err, os.ErrNotExist) {
			return Result{}, &CommandError{Program: inv.Program, NotFound: true, Err: err}
		}
		return Result{}, &CommandError{Program: inv.Program, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var timeout <-chan time.Time
	if r.Timeout > 0 {
		timer := time.NewTimer(r.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var runErr error
	select {
	case runErr = <-done:
	case <-timeout:
		_ = r.terminate(cmd, done)
		return Result{ExitCode: ExitTimedOut, TimedOut: true}, nil
	case <-ctx.Done():
		_ = r.terminate(cmd, done)
		return Result{ExitCode: ExitCancelled, TimedOut: true}, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				// Killed by a signal.
				code = 1
			}
			return Result{ExitCode: code}, nil
		}
		return Result{}, &CommandError{Program: inv.Program, Err: runErr}
	}
	return Result{ExitCode: 0}, nil
}

// terminate sends SIGTERM and SIGKILL after the grace period; it returns the
// Wait error.
func (r *ExecRunner) terminate(cmd *exec.Cmd, done <-chan error) error {
	grace := r.TermGrace
	if grace <= 0 {
		grace = defaultTermGrace
	}
	signalProcess(cmd, syscall.SIGTERM)
	t := time.NewTimer(grace)
	defer t.Stop()
	select {
	case err := <-done:
		return err
	case <-t.C:
		signalProcess(cmd, syscall.SIGKILL)
		return <-done
	}
}

func signalProcess(cmd *exec.Cmd, sig syscall.Signal) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(sig)
}

func applyEnvOverlay(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return append([]string(nil), base...)
	}
	out := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		k := kv
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				k = kv[:i]
				break
			}
		}
		if _, ok := overlay[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overlay {
		out = append(out, k+"="+v)
	}
	return out
}
