package handlers

import (
	"log/slog"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/folio-backend/internal/websocket"
)

// NotificationHandler upgrades admin connections onto the notification hub
type NotificationHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(hub *websocket.Hub, upgrader gorillaws.Upgrader, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger,
	}
}

// Connect handles GET /api/notifications/ws.
// Clients receive events after sending {"type":"subscribe","topic":"inbox"}.
func (h *NotificationHandler) Connect(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed",
				slog.String("remote_ip", c.RealIP()),
				slog.Any("error", err),
			)
		}
		return nil
	}

	websocket.NewClient(h.hub, conn, h.logger).Serve()
	return nil
}
