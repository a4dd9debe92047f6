package bot

import (
	"context"
	"fmt"

	"github.com/jonesrussell/yophone-bot/internal/yophone"
)

// MessageSender sends a text message to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, text string) (yophone.Result, error)
}

// Reply is a command answered with fixed text.
type Reply struct {
	Command string
	Text    string
}

// RegisterReplies registers a command handler for each reply. Replies with
// an empty command or text are skipped.
func (b *Bot) RegisterReplies(sender MessageSender, replies []Reply) int {
	registered := 0
	for _, r := range replies {
		if r.Command == "" || r.Text == "" {
			continue
		}
		text := r.Text
		b.HandleCommand(r.Command, func(ctx context.Context, msg yophone.Message) error {
			if _, err := sender.SendMessage(ctx, msg.ChatID, text); err != nil {
				return fmt.Errorf("reply to %s: %w", msg.Command(), err)
			}
			return nil
		})
		registered++
	}
	return registered
}
