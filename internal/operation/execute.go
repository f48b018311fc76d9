package operation

import (
	"context"
	"errors"
	"fmt"

	"github.com/nickldimartino/bdct/internal/config"
	"github.com/nickldimartino/bdct/internal/gate"
	"github.com/nickldimartino/bdct/internal/scratch"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
)

// ExitError carries the process exit status of a failed operation.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) ExitCode() int { return e.Code }
func (e *ExitError) Unwrap() error { return e.Err }

func fail(err error) error {
	return &ExitError{Code: exitCodeFailure, Err: err}
}

// ExitCode maps an Execute result to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return exitCodeSuccess
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) && ec.ExitCode() != 0 {
		return ec.ExitCode()
	}
	return exitCodeFailure
}

// Execute runs op end to end. A nil error means exit status 0; otherwise the
// error is an *ExitError. The broker's exit status is authoritative: a
// failure to persist the version after success is logged only.
func Execute(ctx context.Context, op config.Operation, deps Deps) error {
	log := deps.logger().With("op", string(op))
	if deps.Runner == nil {
		return fail(fmt.Errorf("%s: no command runner", op))
	}

	plan, err := BuildPlan(op, deps)
	if err != nil {
		return fail(err)
	}
	log.Debug("version resolved",
		"source", plan.Candidate.Source.String(),
		"base", plan.Version.Base,
		"final", plan.Version.Final)

	if plan.SelfVerify != nil {
		p, err := scratch.WriteJSON(plan.ScratchDir, scratch.SelfVerifyFile, plan.SelfVerify)
		if err != nil {
			return fail(fmt.Errorf("failed to write verification results: %w", err))
		}
		log.Debug("wrote verification results", "path", p)
	}

	log.Info("running command", "cmd", gate.DisplayCommand(plan.Invocation))
	res, err := deps.Runner.Run(ctx, plan.Invocation)
	if err != nil {
		return fail(err)
	}
	if !res.Succeeded() {
		msg := fmt.Sprintf("%s exited with status %d", plan.Invocation.Program, res.ExitCode)
		if res.TimedOut {
			msg = fmt.Sprintf("%s stopped before completion", plan.Invocation.Program)
		}
		return &ExitError{Code: res.ExitCode, Err: errors.New(msg)}
	}

	if plan.PersistFile != "" {
		p, err := scratch.Write(plan.ScratchDir, plan.PersistFile, plan.Version.Final)
		if err != nil {
			log.Warn("failed to persist version", "file", plan.PersistFile, "err", err)
			return nil
		}
		log.Info("wrote version", "path", p, "version", plan.Version.Final)
	}
	return nil
}
