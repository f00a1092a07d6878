// Package response writes the JSON envelopes returned by the inbox API.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/folio-backend/internal/errors"
	"github.com/welldanyogia/folio-backend/internal/models"
)

// APIResponse is the envelope for successful single-resource calls
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope for failed calls
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// PageResponse is the envelope for one page of inbox messages
type PageResponse struct {
	Success    bool              `json:"success"`
	Messages   []models.Message  `json:"messages"`
	Pagination models.Pagination `json:"pagination"`
}

// PageErrorResponse is a failed page query. Messages is always an empty array
// so list consumers can render it without a nil check.
type PageErrorResponse struct {
	Success  bool             `json:"success"`
	Error    string           `json:"error"`
	Code     string           `json:"code,omitempty"`
	Messages []models.Message `json:"messages"`
}

// Success writes 200 with data
func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// Created writes 201 with data
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// OK writes a bare {"success": true}
func OK(c echo.Context) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true})
}

// MessagePage writes one page of messages with its pagination metadata
func MessagePage(c echo.Context, page *models.PageResponse) error {
	messages := page.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	return c.JSON(http.StatusOK, PageResponse{
		Success:    true,
		Messages:   messages,
		Pagination: page.Pagination,
	})
}

// MessagePageError writes a failed page query
func MessagePageError(c echo.Context, err error) error {
	code, status := apperrors.Classify(err)
	return c.JSON(status, PageErrorResponse{
		Error:    apperrors.PublicMessage(err),
		Code:     code,
		Messages: []models.Message{},
	})
}

// Error writes err with the status and code it classifies as
func Error(c echo.Context, err error) error {
	code, status := apperrors.Classify(err)
	return c.JSON(status, ErrorResponse{
		Error: apperrors.PublicMessage(err),
		Code:  code,
	})
}

// BadRequest writes 400 INVALID_INPUT with message
func BadRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeInvalidInput,
	})
}
