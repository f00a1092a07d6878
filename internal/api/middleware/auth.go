// Package middleware provides HTTP middleware for the folio inbox API.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/folio-backend/internal/errors"
	"github.com/welldanyogia/folio-backend/internal/logger"
)

// AuthConfig configures AdminTokenAuth
type AuthConfig struct {
	// Token is the shared admin bearer token. Empty disables auth.
	Token string

	// AllowQueryToken also accepts ?token=, for browser WebSocket upgrades
	// which cannot set an Authorization header.
	AllowQueryToken bool

	Logger         *slog.Logger
	SecurityLogger *logger.SecurityLogger
}

// AdminTokenAuth validates the admin bearer token from the Authorization header.
// Uses constant-time comparison to prevent timing attacks.
func AdminTokenAuth(cfg AuthConfig) echo.MiddlewareFunc {
	if cfg.Token == "" && cfg.Logger != nil {
		cfg.Logger.Warn("ADMIN_TOKEN not set - admin API is UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Skip if ADMIN_TOKEN not configured (development mode)
			if cfg.Token == "" {
				return next(c)
			}

			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" && cfg.AllowQueryToken {
				token = c.QueryParam("token")
			}

			if token == "" {
				authFailure(c, cfg.SecurityLogger, "missing_token")
				return unauthorized("missing authorization header")
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.Token)) != 1 {
				authFailure(c, cfg.SecurityLogger, "invalid_token")
				return unauthorized("invalid admin token")
			}

			return next(c)
		}
	}
}

// bearerToken extracts the token from "Bearer <token>"
func bearerToken(header string) string {
	token := strings.TrimPrefix(header, "Bearer ")
	return strings.TrimSpace(token)
}

func authFailure(c echo.Context, secLogger *logger.SecurityLogger, reason string) {
	if secLogger != nil {
		secLogger.AuthFailure(c.RealIP(), c.Request().URL.Path, reason)
	}
}

func unauthorized(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, map[string]interface{}{
		"success": false,
		"error":   message,
		"code":    apperrors.CodeUnauthorized,
	})
}
