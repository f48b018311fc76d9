package root

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/nickldimartino/bdct/cmd/bdct/app"
	"github.com/nickldimartino/bdct/cmd/bdct/broker"
	"github.com/nickldimartino/bdct/cmd/bdct/diagnose"
	"github.com/nickldimartino/bdct/cmd/bdct/openapi"
	"github.com/nickldimartino/bdct/cmd/bdct/pacts"
	"github.com/nickldimartino/bdct/cmd/bdct/serve"
	"github.com/nickldimartino/bdct/cmd/bdct/version"
)

// NewRootCmd creates the root command for bdct.
func NewRootCmd(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bdct",
		Short: "CLI: bi-directional contract testing helpers around the Pact broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.BindFlags(cmd)

	cmd.AddCommand(broker.Commands(opts)...)
	cmd.AddCommand(
		openapi.NewCmd(opts),
		serve.NewCmd(opts),
		pacts.NewCmd(opts),
		diagnose.NewCmd(opts),
		version.NewCmd(),
	)
	return cmd
}

// Execute runs the root command with provided args.
func Execute(ctx context.Context, args []string) error {
	return ExecuteWith(ctx, &app.Options{}, args)
}

// ExecuteWith is Execute with caller-supplied options.
func ExecuteWith(ctx context.Context, opts *app.Options, args []string) error {
	cmd := NewRootCmd(opts)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
