package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonesrussell/yophone-bot/internal/yophone"
	"github.com/spf13/cobra"
)

var (
	errEmptyMessage  = errors.New("nothing to send: pass --text, --file or --media-url")
	errFilesAndMedia = errors.New("--file and --media-url cannot be combined")
)

type sendOptions struct {
	to        string
	text      string
	files     []string
	mediaURLs []string
	options   []string
	links     []string
	grid      int
}

func newSendCommand(opts *rootOptions) *cobra.Command {
	so := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message (sendMessage)",
		Long: `Send a message to a chat.

Plain text is sent as is. --option adds reply options ("label=value"),
--link adds inline URL buttons ("label=url") laid out --grid columns wide,
--media-url attaches media by URL and --file uploads local files (50MB each)
with --text as the caption.`,
		Example: `  yophone-bot send --to CHAT_ID --text "hello"
  yophone-bot send --to CHAT_ID --text "Pick one" --option Yes=yes --option No=no
  yophone-bot send --to CHAT_ID --text "Docs" --link Site=https://example.com --grid 2
  yophone-bot send --to CHAT_ID --text "report" --file ./report.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return apiCall(cmd, opts, func(cmd *cobra.Command, _ *commandDeps, c *yophone.Client) (yophone.Result, error) {
				return so.send(cmd.Context(), c)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&so.to, "to", "", "chat ID to send to")
	flags.StringVar(&so.text, "text", "", "message text, or the caption of uploaded files")
	flags.StringArrayVar(&so.files, "file", nil, "local file to upload (repeatable)")
	flags.StringArrayVar(&so.mediaURLs, "media-url", nil, "media URL to attach (repeatable)")
	flags.StringArrayVar(&so.options, "option", nil, `reply option as "label=value" (repeatable)`)
	flags.StringArrayVar(&so.links, "link", nil, `inline URL button as "label=url" (repeatable)`)
	flags.IntVar(&so.grid, "grid", 0, "button grid columns (implies a button layout)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// messageSender is the subset of the client the send command uses.
type messageSender interface {
	SendMessage(ctx context.Context, chatID, text string) (yophone.Result, error)
	SendMessageWithOptions(ctx context.Context, chatID, text string, options []yophone.ReplyOption) (yophone.Result, error)
	SendMessageWithButtons(ctx context.Context, chatID, text string, buttons yophone.Buttons) (yophone.Result, error)
	SendMessageWithMediaURLs(ctx context.Context, chatID, text string, mediaURLs []string) (yophone.Result, error)
	SendFiles(ctx context.Context, chatID string, paths []string, caption string) (yophone.Result, error)
}

// send picks the sendMessage variant that matches the flags.
func (so *sendOptions) send(ctx context.Context, c messageSender) (yophone.Result, error) {
	if len(so.files) > 0 && len(so.mediaURLs) > 0 {
		return nil, errFilesAndMedia
	}

	switch {
	case len(so.files) > 0:
		return c.SendFiles(ctx, so.to, so.files, so.text)
	case len(so.mediaURLs) > 0:
		return c.SendMessageWithMediaURLs(ctx, so.to, so.text, so.mediaURLs)
	}

	options, err := parsePairs(so.options, "option")
	if err != nil {
		return nil, err
	}
	links, err := parsePairs(so.links, "link")
	if err != nil {
		return nil, err
	}

	if len(links) > 0 || so.grid > 0 {
		buttons := yophone.Buttons{Grid: so.grid}
		for _, o := range options {
			buttons.Options = append(buttons.Options, yophone.ReplyOption{Label: o[0], Value: o[1]})
		}
		for _, l := range links {
			buttons.InlineButtons = append(buttons.InlineButtons, yophone.InlineButton{Label: l[0], URL: l[1]})
		}
		return c.SendMessageWithButtons(ctx, so.to, so.text, buttons)
	}

	if len(options) > 0 {
		opts := make([]yophone.ReplyOption, 0, len(options))
		for _, o := range options {
			opts = append(opts, yophone.ReplyOption{Label: o[0], Value: o[1]})
		}
		return c.SendMessageWithOptions(ctx, so.to, so.text, opts)
	}

	if so.text == "" {
		return nil, errEmptyMessage
	}
	return c.SendMessage(ctx, so.to, so.text)
}

// parsePairs splits "label=value" flag values. A value without "=" uses the
// label for both halves.
func parsePairs(raw []string, flag string) ([][2]string, error) {
	pairs := make([][2]string, 0, len(raw))
	for _, r := range raw {
		label, value, found := strings.Cut(r, "=")
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("--%s %q: label is empty", flag, r)
		}
		if !found {
			value = label
		}
		pairs = append(pairs, [2]string{label, strings.TrimSpace(value)})
	}
	return pairs, nil
}
