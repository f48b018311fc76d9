// Package app carries the settings shared by every bdct subcommand and
// turns them into ready-to-use collaborators.
package app

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nickldimartino/bdct/internal/config"
	"github.com/nickldimartino/bdct/internal/gate"
	"github.com/nickldimartino/bdct/internal/logging"
	"github.com/nickldimartino/bdct/internal/operation"
	"github.com/nickldimartino/bdct/internal/vcs"
	"github.com/nickldimartino/bdct/internal/version"
)

const defaultEnvFile = ".env"

// Options holds the root persistent flags plus the seams tests replace.
type Options struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool
	Timeout    time.Duration

	// Environ returns the process environment. Nil means os.Environ.
	Environ func() config.Env
	// NewRunner builds the external command runner. Nil means an ExecRunner.
	NewRunner func(timeout time.Duration) gate.Runner
	// Now is the clock used for version stamps. Nil means time.Now.
	Now func() time.Time
	// Dir is the working tree queried for the VCS revision.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// BindFlags registers the persistent flags on cmd.
func (o *Options) BindFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&o.ConfigPath, "config", "c", "", "Path to project file (.cue); defaults to $BDCT_CONFIG or ./bdct.cue")
	f.StringVar(&o.EnvFile, "env-file", defaultEnvFile, "Dotenv file merged under the process environment")
	f.BoolVarP(&o.Verbose, "verbose", "v", false, "Enable debug logging")
	f.DurationVar(&o.Timeout, "timeout", 0, "Stop external commands after this long (0 uses the project timeoutMs)")
}

// Runtime is the loaded state of one invocation.
type Runtime struct {
	Env     config.Env
	Project config.Project
	Logger  *slog.Logger
	Stdout  io.Writer
	opts    *Options
}

func (o *Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o *Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

// Load reads the environment, the dotenv file and the project file.
func (o *Options) Load() (*Runtime, error) {
	env := config.EnvFromOS()
	if o.Environ != nil {
		env = o.Environ()
	}
	env, err := config.LoadDotenv(env, o.EnvFile)
	if err != nil {
		return nil, err
	}
	project, err := config.LoadProject(config.ProjectPath(o.ConfigPath, env))
	if err != nil {
		return nil, err
	}
	return &Runtime{
		Env:     env,
		Project: project,
		Logger:  logging.New(o.stderr(), o.Verbose),
		Stdout:  o.stdout(),
		opts:    o,
	}, nil
}

// Timeout is the flag value when set, otherwise the project default.
func (r *Runtime) Timeout() time.Duration {
	if r.opts.Timeout > 0 {
		return r.opts.Timeout
	}
	return time.Duration(r.Project.TimeoutMs) * time.Millisecond
}

// Deps assembles the collaborators of a broker operation.
func (r *Runtime) Deps() operation.Deps {
	var runner gate.Runner
	if r.opts.NewRunner != nil {
		runner = r.opts.NewRunner(r.Timeout())
	} else {
		runner = gate.NewExecRunner(r.Timeout())
	}
	dir := r.opts.Dir
	if dir == "" {
		dir = "."
	}
	return operation.Deps{
		Env:     r.Env,
		Project: r.Project,
		Runner:  runner,
		Deriver: version.Deriver{VCS: vcs.Open(dir), Now: r.opts.Now},
		Logger:  r.Logger,
	}
}
