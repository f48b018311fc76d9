// Package diagnose prints what a broker operation would do without running
// it.
package diagnose

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nickldimartino/bdct/cmd/bdct/app"
	"github.com/nickldimartino/bdct/internal/config"
	"github.com/nickldimartino/bdct/internal/gate"
	"github.com/nickldimartino/bdct/internal/operation"
)

var knownOps = []config.Operation{
	config.OpCanIDeploy,
	config.OpPublishConsumer,
	config.OpPublishProvider,
	config.OpRecordDeployment,
}

type report struct {
	Operation     string            `json:"operation"`
	Participant   string            `json:"participant,omitempty"`
	Environment   string            `json:"environment,omitempty"`
	Branch        string            `json:"branch,omitempty"`
	VersionSource string            `json:"versionSource"`
	VersionKey    string            `json:"versionKey,omitempty"`
	BaseVersion   string            `json:"baseVersion"`
	Version       string            `json:"version"`
	Salt          string            `json:"salt,omitempty"`
	Program       string            `json:"program"`
	Args          []string          `json:"args"`
	Env           map[string]string `json:"env,omitempty"`
	PersistFile   string            `json:"persistFile,omitempty"`
	SelfVerify    any               `json:"selfVerification,omitempty"`
}

// NewCmd builds `bdct diagnose <operation>`.
func NewCmd(opts *app.Options) *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:           "diagnose <operation>",
		Short:         "Show the resolved plan for a broker operation without running it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := parseOp(args[0])
			if err != nil {
				return err
			}
			rt, err := opts.Load()
			if err != nil {
				return err
			}
			plan, err := operation.BuildPlan(op, rt.Deps())
			if err != nil {
				return err
			}
			return writeReport(rt.Stdout, buildReport(plan), pretty)
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

func parseOp(s string) (config.Operation, error) {
	for _, op := range knownOps {
		if string(op) == s {
			return op, nil
		}
	}
	names := make([]string, 0, len(knownOps))
	for _, op := range knownOps {
		names = append(names, string(op))
	}
	return "", fmt.Errorf("unknown operation: %q (known: %s)", s, strings.Join(names, ", "))
}

func buildReport(p operation.Plan) report {
	r := report{
		Operation:     string(p.Op),
		Participant:   p.Config.Participant,
		Environment:   p.Config.Environment,
		Branch:        p.Config.Branch,
		VersionSource: p.Candidate.Source.String(),
		VersionKey:    p.Candidate.Key,
		BaseVersion:   p.Version.Base,
		Version:       p.Version.Final,
		Salt:          p.Version.Salt,
		Program:       p.Invocation.Program,
		Args:          gate.RedactArgs(p.Invocation.Args),
		Env:           p.Invocation.Env,
		PersistFile:   p.PersistFile,
	}
	if p.SelfVerify != nil {
		r.SelfVerify = p.SelfVerify
	}
	return r
}

func writeReport(w io.Writer, r report, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(r)
}
