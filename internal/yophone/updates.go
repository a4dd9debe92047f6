package yophone

import (
	"context"
	"encoding/json"

	infralogger "github.com/jonesrussell/yophone-bot/infrastructure/logger"
)

type updatesResponse struct {
	Data []json.RawMessage `json:"data"`
}

// GetUpdates fetches pending updates. An empty reply yields no updates.
// Elements that do not decode as an Update are logged, reported to the
// Recorder and skipped; the rest of the batch is returned.
func (c *Client) GetUpdates(ctx context.Context) ([]Update, error) {
	var resp updatesResponse
	if err := c.call(ctx, "getUpdates", nil, &resp); err != nil {
		return nil, err
	}

	updates := make([]Update, 0, len(resp.Data))
	for i, raw := range resp.Data {
		var u Update
		if err := json.Unmarshal(raw, &u); err != nil {
			c.recorder.UpdateRejected()
			c.logger.Warn("Skipping malformed update",
				infralogger.Int("index", i),
				infralogger.Error(err),
			)
			continue
		}
		updates = append(updates, u)
	}
	return updates, nil
}
