// Package cmd implements the yophone-bot command-line interface: the bot
// service itself (serve) and one-shot YoPhone Bot API calls.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	debug      bool
	jsonOutput bool
}

// NewRootCommand builds the full command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "yophone-bot",
		Short:         "YoPhone bot service and Bot API client",
		Long:          `Runs a YoPhone bot (polling or webhook) and calls the YoPhone Bot API from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print API replies as JSON instead of a table")

	root.AddCommand(
		newServeCommand(opts),
		newMeCommand(opts),
		newSendCommand(opts),
		newWebhookCommand(opts),
		newCommandsCommand(opts),
		newMemberCommand(opts),
		newVersionCommand(),
	)

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// Main runs the CLI and exits with a non-zero status on failure.
func Main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
