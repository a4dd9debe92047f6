// Package webhook receives updates pushed by YoPhone and hands them to the bot.
package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	infralogger "github.com/jonesrussell/yophone-bot/infrastructure/logger"
	"github.com/jonesrussell/yophone-bot/internal/bot"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
)

// DefaultPath is where updates are accepted when no path is configured.
const DefaultPath = "/webhook"

// Dispatcher handles one update.
type Dispatcher interface {
	HandleUpdate(ctx context.Context, source string, u yophone.Update)
}

// Handler serves webhook deliveries.
type Handler struct {
	dispatcher Dispatcher
	logger     infralogger.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(dispatcher Dispatcher, log infralogger.Logger) *Handler {
	return &Handler{dispatcher: dispatcher, logger: log}
}

// Receive binds one update from the request body and dispatches it.
func (h *Handler) Receive(c *gin.Context) {
	var update yophone.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		infralogger.FromContext(c.Request.Context(), h.logger).Warn("Invalid webhook payload", infralogger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload: " + err.Error()})
		return
	}

	h.dispatcher.HandleUpdate(c.Request.Context(), bot.SourceWebhook, update)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RegisterRoutes mounts the handler at path, or DefaultPath when path is empty.
func (h *Handler) RegisterRoutes(router gin.IRoutes, path string) {
	if path == "" {
		path = DefaultPath
	}
	router.POST(path, h.Receive)
}
