package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

// ClientCounter reports how many notification clients are connected
type ClientCounter interface {
	ClientCount() int
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db    *gorm.DB
	relay ClientCounter
}

// NewHealthHandler creates a HealthHandler. relay may be nil when the
// notification hub is not running.
func NewHealthHandler(db *gorm.DB, relay ClientCounter) *HealthHandler {
	return &HealthHandler{db: db, relay: relay}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status           string            `json:"status"`
	Services         map[string]string `json:"services"`
	WebSocketClients *int              `json:"websocket_clients,omitempty"`
}

// ReadyResponse is the body of GET /ready
type ReadyResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func healthWord(err error) string {
	if err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// Health handles GET /health. It is 503 whenever the message store is unreachable.
func (h *HealthHandler) Health(c echo.Context) error {
	dbErr := h.pingStore(c.Request().Context())

	resp := HealthResponse{
		Status:   healthWord(dbErr),
		Services: map[string]string{"database": healthWord(dbErr)},
	}
	if h.relay != nil {
		n := h.relay.ClientCount()
		resp.Services["notifications"] = "healthy"
		resp.WebSocketClients = &n
	}

	code := http.StatusOK
	if dbErr != nil {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c echo.Context) error {
	if err := h.pingStore(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status: "not ready",
			Reason: "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, ReadyResponse{Status: "ready"})
}

func (h *HealthHandler) pingStore(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
