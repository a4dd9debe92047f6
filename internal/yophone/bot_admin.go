package yophone

import (
	"context"

	infralogger "github.com/jonesrussell/yophone-bot/infrastructure/logger"
)

// SetCommands replaces the command list shown to users.
func (c *Client) SetCommands(ctx context.Context, commands []Command) (Result, error) {
	payload := struct {
		Commands []Command `json:"commands"`
	}{Commands: nonNil(commands)}

	result, err := c.callResult(ctx, "setCommands", payload)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Commands configured", infralogger.Int("count", len(commands)))
	return result, nil
}

// SetWebhook registers the URL YoPhone pushes updates to.
func (c *Client) SetWebhook(ctx context.Context, webhookURL string) (Result, error) {
	payload := struct {
		WebhookURL string `json:"webhookURL"`
	}{WebhookURL: webhookURL}

	result, err := c.callResult(ctx, "setWebhook", payload)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Webhook set", infralogger.String("webhook_url", webhookURL))
	return result, nil
}

// GetWebhookInfo reports the current webhook registration.
func (c *Client) GetWebhookInfo(ctx context.Context) (Result, error) {
	return c.callResult(ctx, "getWebhookInfo", nil)
}

// DeleteWebhook removes the webhook so updates can be polled again.
func (c *Client) DeleteWebhook(ctx context.Context) (Result, error) {
	result, err := c.callResult(ctx, "deleteWebhook", nil)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Webhook deleted")
	return result, nil
}

// GetMe returns information about the bot owning the API key.
func (c *Client) GetMe(ctx context.Context) (Result, error) {
	return c.callResult(ctx, "getMe", nil)
}

// GetChannelMember reports a user's status in a channel.
func (c *Client) GetChannelMember(ctx context.Context, channelID, userID string) (Result, error) {
	payload := struct {
		ChannelID string `json:"channelId"`
		UserID    string `json:"userId"`
	}{ChannelID: channelID, UserID: userID}

	return c.callResult(ctx, "getChannelMember", payload)
}
