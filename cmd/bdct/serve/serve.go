// Package serve implements `bdct serve-provider`.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/nickldimartino/bdct/cmd/bdct/app"
	"github.com/nickldimartino/bdct/internal/provider"
)

const envPort = "PORT"

// NewCmd builds the serve-provider command.
func NewCmd(opts *app.Options) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:           "serve-provider",
		Short:         "Run the demo provider on 127.0.0.1 until interrupted",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.Load()
			if err != nil {
				return err
			}
			p := port
			if p == "" {
				p = rt.Env.Get(envPort, provider.DefaultPort)
			}
			return provider.Serve(cmd.Context(), provider.Addr(p), rt.Logger)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (defaults to $PORT or "+provider.DefaultPort+")")
	return cmd
}
