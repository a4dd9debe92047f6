package cmd

import (
	"errors"

	"github.com/jonesrussell/yophone-bot/internal/yophone"
	"github.com/spf13/cobra"
)

var errWebhookURLRequired = errors.New("webhook URL is required: pass it as an argument or set bot.webhook_url")

// apiCall runs one API call with a freshly built client and prints the reply.
func apiCall(
	cmd *cobra.Command,
	opts *rootOptions,
	call func(cmd *cobra.Command, deps *commandDeps, client *yophone.Client) (yophone.Result, error),
) error {
	deps, err := newCommandDeps(opts)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Logger.Sync() }()

	client, err := deps.newClient()
	if err != nil {
		return err
	}

	result, err := call(cmd, deps, client)
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), result, opts.jsonOutput)
}

func newMeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the bot that owns the API key (getMe)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return apiCall(cmd, opts, func(cmd *cobra.Command, _ *commandDeps, c *yophone.Client) (yophone.Result, error) {
				return c.GetMe(cmd.Context())
			})
		},
	}
}

func newMemberCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "member <channel-id> <user-id>",
		Short: "Show a user's status in a channel (getChannelMember)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return apiCall(cmd, opts, func(cmd *cobra.Command, _ *commandDeps, c *yophone.Client) (yophone.Result, error) {
				return c.GetChannelMember(cmd.Context(), args[0], args[1])
			})
		},
	}
}

func newWebhookCommand(opts *rootOptions) *cobra.Command {
	webhookCmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the webhook registration",
	}

	webhookCmd.AddCommand(
		&cobra.Command{
			Use:   "set [url]",
			Short: "Register the webhook URL (defaults to bot.webhook_url)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return apiCall(cmd, opts, func(cmd *cobra.Command, deps *commandDeps, c *yophone.Client) (yophone.Result, error) {
					url := deps.Config.Bot.WebhookURL
					if len(args) == 1 {
						url = args[0]
					}
					if url == "" {
						return nil, errWebhookURLRequired
					}
					return c.SetWebhook(cmd.Context(), url)
				})
			},
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show the current webhook registration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return apiCall(cmd, opts, func(cmd *cobra.Command, _ *commandDeps, c *yophone.Client) (yophone.Result, error) {
					return c.GetWebhookInfo(cmd.Context())
				})
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the webhook so updates can be polled",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return apiCall(cmd, opts, func(cmd *cobra.Command, _ *commandDeps, c *yophone.Client) (yophone.Result, error) {
					return c.DeleteWebhook(cmd.Context())
				})
			},
		},
	)

	return webhookCmd
}
