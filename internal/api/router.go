package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/welldanyogia/folio-backend/internal/api/handlers"
	"github.com/welldanyogia/folio-backend/internal/api/middleware"
	"github.com/welldanyogia/folio-backend/internal/logger"
	"github.com/welldanyogia/folio-backend/internal/repository"
	"github.com/welldanyogia/folio-backend/internal/services"
	"github.com/welldanyogia/folio-backend/internal/websocket"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	defaultRateLimit = 10
	defaultRateBurst = 20

	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB *gorm.DB

	// Inbox is built from DB and Hub when nil
	Inbox services.InboxService

	// Hub relays new-message events; nil disables the websocket route
	Hub *websocket.Hub

	Logger         *slog.Logger
	SecurityLogger *logger.SecurityLogger

	// Security configuration
	AdminToken     string   // Admin bearer token (empty = disabled)
	AllowedOrigins []string // Allowed CORS and websocket origins
	Production     bool     // Drops wildcard CORS origins
	RateLimit      float64  // Requests per second (0 = default)
	RateBurst      int      // Burst size for rate limiter

	// Context bounds background work such as limiter cleanup
	Context context.Context
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// 1. Recover from panics
	e.Use(middleware.Recover())

	// 2. Security headers (applied to all responses)
	e.Use(middleware.SecureHeaders())

	// 3. CORS
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins, cfg.Production))

	// 4. Rate limiting
	rps, burst := cfg.RateLimit, cfg.RateBurst
	if rps <= 0 {
		rps = defaultRateLimit
	}
	if burst <= 0 {
		burst = defaultRateBurst
	}
	limiter := middleware.NewVisitorLimiter(rate.Limit(rps), burst)
	if cfg.Context != nil {
		go limiter.RunPruner(cfg.Context, limiterCleanupInterval, limiterMaxIdle)
	}
	e.Use(middleware.RateLimit(limiter, cfg.SecurityLogger))

	// 5. Metrics
	e.Use(middleware.Metrics())

	// 6. Request logging
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	inbox := cfg.Inbox
	if inbox == nil {
		var notifier services.Notifier
		if cfg.Hub != nil {
			notifier = cfg.Hub
		}
		inbox = services.NewInboxService(repository.NewMessageRepository(cfg.DB), notifier, cfg.Logger)
	}

	// Initialize handlers
	var relay handlers.ClientCounter
	if cfg.Hub != nil {
		relay = cfg.Hub
	}
	healthHandler := handlers.NewHealthHandler(cfg.DB, relay)
	messageHandler := handlers.NewMessageHandler(inbox)
	contactHandler := handlers.NewContactHandler(inbox)

	// Operational routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	// Public contact form
	api.POST("/contact", contactHandler.Submit)

	adminAuth := middleware.AdminTokenAuth(middleware.AuthConfig{
		Token:          cfg.AdminToken,
		Logger:         cfg.Logger,
		SecurityLogger: cfg.SecurityLogger,
	})

	// Admin inbox routes
	messages := api.Group("/messages", adminAuth)
	messages.GET("", messageHandler.List)
	messages.GET("/:id", messageHandler.Get)
	messages.PUT("/:id", messageHandler.Update)
	messages.DELETE("/:id", messageHandler.Delete)

	// Push notifications
	if cfg.Hub != nil {
		wsAuth := middleware.AdminTokenAuth(middleware.AuthConfig{
			Token:           cfg.AdminToken,
			AllowQueryToken: true,
			SecurityLogger:  cfg.SecurityLogger,
		})
		upgrader := websocket.NewSecureUpgrader(cfg.AllowedOrigins, cfg.SecurityLogger)
		notificationHandler := handlers.NewNotificationHandler(cfg.Hub, upgrader, cfg.Logger)
		api.GET("/notifications/ws", notificationHandler.Connect, wsAuth)
	}

	return e
}
