package gate

import (
	"context"
	"sync"
)

// RecordingRunner records invocations instead of running them. Each call
// consumes the next scripted exit code (or error); once the script runs out
// the last entry repeats, and an empty script yields success.
type RecordingRunner struct {
	ExitCodes []int
	Errs      []error

	mu    sync.Mutex
	calls []Invocation
}

// Run records inv and returns the scripted outcome.
func (r *RecordingRunner) Run(_ context.Context, inv Invocation) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := len(r.calls)
	r.calls = append(r.calls, cloneInvocation(inv))
	if err := pick(r.Errs, i); err != nil {
		return Result{}, err
	}
	code := 0
	if len(r.ExitCodes) > 0 {
		code = r.ExitCodes[min(i, len(r.ExitCodes)-1)]
	}
	return Result{ExitCode: code}, nil
}

// Calls returns a copy of the recorded invocations.
func (r *RecordingRunner) Calls() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.calls...)
}

func pick(errs []error, i int) error {
	if len(errs) == 0 {
		return nil
	}
	return errs[min(i, len(errs)-1)]
}

func cloneInvocation(inv Invocation) Invocation {
	out := Invocation{Program: inv.Program, Args: append([]string(nil), inv.Args...)}
	if inv.Env != nil {
		out.Env = make(map[string]string, len(inv.Env))
		for k, v := range inv.Env {
			out.Env[k] = v
		}
	}
	return out
}
