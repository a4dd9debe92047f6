package yophone

import "context"

const sendMessageEndpoint = "sendMessage"

type textMessage struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// SendMessage sends a plain text message to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (Result, error) {
	return c.callResult(ctx, sendMessageEndpoint, textMessage{To: chatID, Text: text})
}

// SendMessageWithOptions sends text with a list of reply options.
func (c *Client) SendMessageWithOptions(ctx context.Context, chatID, text string, options []ReplyOption) (Result, error) {
	payload := struct {
		textMessage
		Options []ReplyOption `json:"options"`
	}{
		textMessage: textMessage{To: chatID, Text: text},
		Options:     nonNil(options),
	}
	return c.callResult(ctx, sendMessageEndpoint, payload)
}

// SendMessageWithButtons sends text with options and inline buttons laid out in a grid.
func (c *Client) SendMessageWithButtons(ctx context.Context, chatID, text string, buttons Buttons) (Result, error) {
	if buttons.Grid <= 0 {
		buttons.Grid = 1
	}
	buttons.Options = nonNil(buttons.Options)
	buttons.InlineButtons = nonNil(buttons.InlineButtons)

	payload := struct {
		textMessage
		Buttons Buttons `json:"buttons"`
	}{
		textMessage: textMessage{To: chatID, Text: text},
		Buttons:     buttons,
	}
	return c.callResult(ctx, sendMessageEndpoint, payload)
}

// SendMessageWithMediaURLs sends text with media referenced by URL.
func (c *Client) SendMessageWithMediaURLs(ctx context.Context, chatID, text string, mediaURLs []string) (Result, error) {
	payload := struct {
		textMessage
		MediaURLs []string `json:"mediaURLs"`
	}{
		textMessage: textMessage{To: chatID, Text: text},
		MediaURLs:   nonNil(mediaURLs),
	}
	return c.callResult(ctx, sendMessageEndpoint, payload)
}

// nonNil makes nil slices encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
