// Package operation runs the broker-facing subcommands: resolve the
// environment, derive the version, invoke the broker CLI and persist the
// version for later stages.
package operation

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nickldimartino/bdct/internal/config"
	"github.com/nickldimartino/bdct/internal/gate"
	"github.com/nickldimartino/bdct/internal/logging"
	"github.com/nickldimartino/bdct/internal/scratch"
	"github.com/nickldimartino/bdct/internal/version"
)

// Deps are the collaborators of an operation.
type Deps struct {
	Env     config.Env
	Project config.Project
	Runner  gate.Runner
	Deriver version.Deriver
	Logger  *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Discard()
}

func (d Deps) now() time.Time {
	if d.Deriver.Now != nil {
		return d.Deriver.Now()
	}
	return time.Now()
}

// SelfVerification is the results payload published with a provider
// contract.
type SelfVerification struct {
	Success         bool   `json:"success"`
	Verifier        string `json:"verifier"`
	VerifierVersion string `json:"verifierVersion"`
	ExecutedAt      string `json:"executedAt"`
}

// Plan is everything an operation will do, computed without side effects.
type Plan struct {
	Op         config.Operation
	Config     config.DeploymentConfig
	Candidate  version.Candidate
	Version    version.Resolved
	Invocation gate.Invocation
	// PersistFile is written under ScratchDir after a successful run.
	PersistFile string
	ScratchDir  string
	SelfVerify  *SelfVerification
}

// BuildPlan resolves the environment and version for op and assembles the
// external invocation.
func BuildPlan(op config.Operation, deps Deps) (Plan, error) {
	cfg, err := config.Resolve(op, deps.Env, deps.Project)
	if err != nil {
		return Plan{}, err
	}
	cand, err := deps.Deriver.Derive(deps.Env, chainFor(op, deps.Project))
	if err != nil {
		if errors.Is(err, version.ErrNoVersion) {
			return Plan{}, fmt.Errorf("%w: %s", err, noVersionHint(op))
		}
		return Plan{}, err
	}

	p := Plan{
		Op:         op,
		Config:     cfg,
		Candidate:  cand,
		Version:    version.Unsalted(cand.Value),
		ScratchDir: deps.Project.ScratchDir,
	}
	overlay := gate.TLSOverlay(cfg)
	broker := deps.Project.Commands.Broker

	switch op {
	case config.OpCanIDeploy:
		p.Invocation = gate.Invocation{Program: broker, Args: gate.CanIDeployArgs(cfg, p.Version.Final), Env: overlay}
	case config.OpRecordDeployment:
		p.Invocation = gate.Invocation{Program: broker, Args: gate.RecordDeploymentArgs(cfg, p.Version.Final), Env: overlay}
	case config.OpPublishConsumer:
		suffix := deps.Env.Get(config.EnvConsumerSuffix, "")
		p.Version = version.Salt(cand.Value, suffix, cfg.Branch, deps.Project.TrunkBranch, deps.now())
		p.Invocation = gate.Invocation{
			Program: broker,
			Args:    gate.PublishConsumerArgs(cfg, deps.Project.PactsDir, p.Version.Final),
			Env:     overlay,
		}
		p.PersistFile = scratch.ConsumerVersionFile
	case config.OpPublishProvider:
		p.SelfVerify = &SelfVerification{
			Success:         cfg.VerificationSuccess,
			Verifier:        cfg.Verifier,
			VerifierVersion: cfg.VerifierVersion,
			ExecutedAt:      deps.now().UTC().Format(time.RFC3339Nano),
		}
		results := scratch.Path(p.ScratchDir, scratch.SelfVerifyFile)
		p.Invocation = gate.Invocation{
			Program: deps.Project.Commands.Pactflow,
			Args:    gate.PublishProviderArgs(cfg, p.Version.Final, results),
			Env:     overlay,
		}
		p.PersistFile = scratch.ProviderVersionFile
	default:
		return Plan{}, fmt.Errorf("unknown operation: %s", op)
	}
	return p, nil
}

func chainFor(op config.Operation, project config.Project) []version.Step {
	switch op {
	case config.OpCanIDeploy:
		return []version.Step{
			{Source: version.Explicit, Key: config.EnvVersion},
			{Source: version.File, Key: config.EnvVersionFile, OnFileError: project.VersionFile.CanIDeploy},
		}
	case config.OpRecordDeployment:
		return []version.Step{
			{Source: version.Explicit, Key: config.EnvVersion},
			{Source: version.File, Key: config.EnvVersionFile, OnFileError: project.VersionFile.RecordDeployment},
		}
	case config.OpPublishConsumer:
		return []version.Step{
			{Source: version.Explicit, Key: config.EnvConsumerVersion},
			{Source: version.VCS},
			{Source: version.Timestamp, Format: version.TimeFormatMillis},
		}
	case config.OpPublishProvider:
		return []version.Step{
			{Source: version.Explicit, Key: config.EnvProviderVersion},
			{Source: version.Explicit, Key: config.EnvGitHubSHA},
			{Source: version.Timestamp, Format: version.TimeFormatMillis},
		}
	}
	return nil
}

func noVersionHint(op config.Operation) string {
	switch op {
	case config.OpCanIDeploy, config.OpRecordDeployment:
		return "no VERSION provided and VERSION_FILE not found"
	}
	return "no version source available"
}
