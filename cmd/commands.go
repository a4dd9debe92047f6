package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
	"github.com/spf13/cobra"
)

var errNoCommands = errors.New("no commands to publish: configure bot.commands or pass --command")

func newCommandsCommand(opts *rootOptions) *cobra.Command {
	commandsCmd := &cobra.Command{
		Use:   "commands",
		Short: "Manage the command list shown to users",
	}

	var flagCommands []string
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Publish commands with setCommands",
		Long: `Publish the command list. Commands come from --command flags when given,
otherwise from bot.commands in the config file.`,
		Example: `  yophone-bot commands sync
  yophone-bot commands sync --command "start=Start the bot" --command "help=Show help"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return apiCall(cmd, opts, func(cmd *cobra.Command, deps *commandDeps, c *yophone.Client) (yophone.Result, error) {
				commands, err := parseCommands(flagCommands)
				if err != nil {
					return nil, err
				}
				if len(commands) == 0 {
					commands = deps.Config.Bot.APICommands()
				}
				if len(commands) == 0 {
					return nil, errNoCommands
				}

				if !opts.jsonOutput {
					printCommands(cmd, commands)
				}
				return c.SetCommands(cmd.Context(), commands)
			})
		},
	}
	syncCmd.Flags().StringArrayVar(&flagCommands, "command", nil, `command as "name=description" (repeatable)`)

	commandsCmd.AddCommand(syncCmd)
	return commandsCmd
}

func parseCommands(raw []string) ([]yophone.Command, error) {
	commands := make([]yophone.Command, 0, len(raw))
	for _, r := range raw {
		name, description, _ := strings.Cut(r, "=")
		name = yophone.CommandName(name)
		if name == "" {
			return nil, fmt.Errorf("--command %q: name is empty", r)
		}
		commands = append(commands, yophone.Command{Command: name, Description: strings.TrimSpace(description)})
	}
	return commands, nil
}

func printCommands(cmd *cobra.Command, commands []yophone.Command) {
	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Command", "Description"})
	for _, c := range commands {
		t.AppendRow(table.Row{"/" + c.Command, c.Description})
	}
	t.Render()
}
