package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logRequest(t *testing.T, target string, handler echo.HandlerFunc) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	e.GET("/api/*", handler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry, rec
}

func TestRequestLogger_Fields(t *testing.T) {
	entry, rec := logRequest(t, "/api/admin/messages?page=2", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/admin/messages", entry["path"])
	assert.EqualValues(t, 200, entry["status"])
	assert.Contains(t, entry, "latency")
	assert.Contains(t, entry, "remote_ip")
}

func TestRequestLogger_Status(t *testing.T) {
	tests := []struct {
		name       string
		handler    echo.HandlerFunc
		wantStatus int
		wantLevel  string
	}{
		{
			name:       "written 404",
			handler:    func(c echo.Context) error { return c.NoContent(http.StatusNotFound) },
			wantStatus: http.StatusNotFound,
			wantLevel:  "INFO",
		},
		{
			name:       "http error 400",
			handler:    func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadRequest, "bad") },
			wantStatus: http.StatusBadRequest,
			wantLevel:  "INFO",
		},
		{
			name:       "plain error becomes 500",
			handler:    func(c echo.Context) error { return errors.New("store down") },
			wantStatus: http.StatusInternalServerError,
			wantLevel:  "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, rec := logRequest(t, "/api/contact", tt.handler)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.EqualValues(t, tt.wantStatus, entry["status"])
			assert.Equal(t, tt.wantLevel, entry["level"])
		})
	}
}

func TestRequestLogger_DropsQueryToken(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(slog.New(slog.NewJSONHandler(&buf, nil))))
	e.GET("/api/notifications/ws", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/notifications/ws?token=secret-token", nil))

	assert.Contains(t, buf.String(), "/api/notifications/ws")
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestRecover(t *testing.T) {
	e := echo.New()
	e.Use(Recover())
	e.GET("/panic", func(c echo.Context) error { panic("nil map write") })
	e.GET("/fine", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	panicked := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		e.ServeHTTP(panicked, httptest.NewRequest(http.MethodGet, "/panic", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, panicked.Code)

	fine := httptest.NewRecorder()
	e.ServeHTTP(fine, httptest.NewRequest(http.MethodGet, "/fine", nil))
	assert.Equal(t, "ok", fine.Body.String())
}
