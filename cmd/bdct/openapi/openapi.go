// Package openapi implements `bdct generate-openapi`.
package openapi

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nickldimartino/bdct/cmd/bdct/app"
	"github.com/nickldimartino/bdct/internal/config"
	"github.com/nickldimartino/bdct/internal/openapi"
)

// NewCmd builds the generate-openapi command.
func NewCmd(opts *app.Options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:           "generate-openapi",
		Short:         "Write the provider OpenAPI document from @openapi annotations",
		Long:          "Scans the configured sources for @openapi annotations. DEMO_BAD=true mutates the result to conflict with the consumer.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.Load()
			if err != nil {
				return err
			}
			dest := out
			if dest == "" {
				dest = rt.Project.OpenAPI.Output
			}
			bad := rt.Env.IsTrueFold(config.EnvDemoBad)
			doc, err := openapi.Generate(cmd.Context(), openapi.Options{
				Root:             opts.Dir,
				Sources:          rt.Project.OpenAPI.Sources,
				Bad:              bad,
				Transform:        rt.Project.OpenAPI.Transform,
				TransformTimeout: time.Duration(rt.Project.OpenAPI.TransformMs) * time.Millisecond,
				Logger:           rt.Logger,
			})
			if err != nil {
				return err
			}
			if err := openapi.Write(dest, doc); err != nil {
				return fmt.Errorf("failed to write OpenAPI: %w", err)
			}
			mode := "(GOOD demo)"
			if bad {
				mode = "(BAD demo)"
			}
			_, err = fmt.Fprintf(rt.Stdout, "OpenAPI written to %s %s\n", dest, mode)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (defaults to the project openapi.output)")
	return cmd
}
