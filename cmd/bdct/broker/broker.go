// Package broker holds the subcommands that call the contract broker CLI.
package broker

import (
	"github.com/spf13/cobra"

	"github.com/nickldimartino/bdct/cmd/bdct/app"
	"github.com/nickldimartino/bdct/internal/config"
	"github.com/nickldimartino/bdct/internal/operation"
)

var commands = []struct {
	op    config.Operation
	short string
	long  string
}{
	{
		op:    config.OpCanIDeploy,
		short: "Ask the broker whether a version is safe to deploy",
		long: "Checks PACTICIPANT at VERSION (or the contents of VERSION_FILE) against " +
			"ENVIRONMENT (default \"test\") and exits with the broker's status.",
	},
	{
		op:    config.OpPublishConsumer,
		short: "Publish consumer pacts with a branch-salted version",
		long: "Publishes the pacts directory. The version is CONSUMER_VERSION, the short " +
			"git revision or a millisecond timestamp, salted off the trunk branch. " +
			"On success the final version is written to the scratch directory.",
	},
	{
		op:    config.OpPublishProvider,
		short: "Publish the provider OpenAPI contract with self-verification results",
		long: "Publishes PROVIDER_CONTRACT together with a generated verification results " +
			"file. The version is PROVIDER_VERSION, GITHUB_SHA or a millisecond timestamp.",
	},
	{
		op:    config.OpRecordDeployment,
		short: "Record a deployment of a version to an environment",
		long: "Records PACTICIPANT (default: the provider name) at VERSION or VERSION_FILE " +
			"as deployed to ENVIRONMENT.",
	},
}

// Commands returns one cobra command per broker operation.
func Commands(opts *app.Options) []*cobra.Command {
	out := make([]*cobra.Command, 0, len(commands))
	for _, c := range commands {
		op := c.op
		out = append(out, &cobra.Command{
			Use:           string(op),
			Short:         c.short,
			Long:          c.long,
			Args:          cobra.NoArgs,
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := opts.Load()
				if err != nil {
					return err
				}
				return operation.Execute(cmd.Context(), op, rt.Deps())
			},
		})
	}
	return out
}
