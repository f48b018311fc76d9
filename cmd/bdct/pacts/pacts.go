// Package pacts implements `bdct write-pacts`.
package pacts

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nickldimartino/bdct/cmd/bdct/app"
	"github.com/nickldimartino/bdct/internal/config"
	"github.com/nickldimartino/bdct/internal/pact"
)

// NewCmd builds the write-pacts command.
func NewCmd(opts *app.Options) *cobra.Command {
	var scenario, dir string
	cmd := &cobra.Command{
		Use:   "write-pacts",
		Short: "Write the demo consumer pact file",
		Long: "Writes <consumer>-<provider>.json for the chosen scenario into the pacts " +
			"directory. Without --scenario, DEMO_BAD=true selects \"bad\".",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.Load()
			if err != nil {
				return err
			}
			name := scenario
			if name == "" {
				name = "good"
				if rt.Env.IsTrueFold(config.EnvDemoBad) {
					name = "bad"
				}
			}
			p, err := pact.Scenario(name, rt.Project.Names.Consumer, rt.Project.Names.Provider)
			if err != nil {
				return err
			}
			out := dir
			if out == "" {
				out = rt.Project.PactsDir
			}
			path, err := pact.Write(out, p)
			if err != nil {
				return fmt.Errorf("failed to write pact: %w", err)
			}
			rt.Logger.Info("wrote pact", "path", path, "scenario", name, "interactions", len(p.Interactions))
			return nil
		},
	}
	cmd.Flags().StringVar(&scenario, "scenario", "", "Fixture set: good, bad, rich or mrde")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (defaults to the project pactsDir)")
	return cmd
}
