package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/welldanyogia/folio-backend/internal/logger"
)

const testToken = "test-admin-token"

func serveWithAuth(cfg AuthConfig, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(AdminTokenAuth(cfg))
	e.GET("/api/messages", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAdminTokenAuth_MissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)

	rec := serveWithAuth(AuthConfig{Token: testToken}, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
}

func TestAdminTokenAuth_InvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")

	rec := serveWithAuth(AuthConfig{Token: testToken}, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid admin token")
}

func TestAdminTokenAuth_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)

	rec := serveWithAuth(AuthConfig{Token: testToken}, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
}

func TestAdminTokenAuth_QueryTokenRejectedByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/messages?token="+testToken, nil)

	rec := serveWithAuth(AuthConfig{Token: testToken}, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminTokenAuth_QueryTokenWhenAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/messages?token="+testToken, nil)

	rec := serveWithAuth(AuthConfig{Token: testToken, AllowQueryToken: true}, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminTokenAuth_NoTokenConfigured(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)

	rec := serveWithAuth(AuthConfig{Logger: log}, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "UNSECURED")
}

func TestAdminTokenAuth_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	secLogger := logger.NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")

	rec := serveWithAuth(AuthConfig{Token: testToken, SecurityLogger: secLogger}, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, buf.String(), "invalid_token")
	assert.NotContains(t, buf.String(), "wrong-token")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"Bearer  abc ", "abc"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, bearerToken(tt.header))
		})
	}
}
