package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/folio-backend/internal/api/response"
	"github.com/welldanyogia/folio-backend/internal/models"
	"github.com/welldanyogia/folio-backend/internal/services"
)

// MessageHandler handles admin inbox HTTP requests
type MessageHandler struct {
	inbox services.InboxService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(inbox services.InboxService) *MessageHandler {
	return &MessageHandler{inbox: inbox}
}

// List handles GET /api/messages?page=&limit=&status=&lastDocId=
func (h *MessageHandler) List(c echo.Context) error {
	req := models.PageRequest{
		Page:      queryInt(c, "page"),
		PageSize:  queryInt(c, "limit"),
		Status:    models.StatusFilter(c.QueryParam("status")),
		LastDocID: c.QueryParam("lastDocId"),
	}

	page, err := h.inbox.ListPage(c.Request().Context(), req)
	if err != nil {
		return response.MessagePageError(c, err)
	}

	return response.MessagePage(c, page)
}

// Get handles GET /api/messages/:id
func (h *MessageHandler) Get(c echo.Context) error {
	message, err := h.inbox.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, message)
}

// Update handles PUT /api/messages/:id
func (h *MessageHandler) Update(c echo.Context) error {
	var req models.MessageUpdate
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if _, err := h.inbox.Update(c.Request().Context(), c.Param("id"), req); err != nil {
		return response.Error(c, err)
	}

	return response.OK(c)
}

// Delete handles DELETE /api/messages/:id
func (h *MessageHandler) Delete(c echo.Context) error {
	if err := h.inbox.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.OK(c)
}

// queryInt parses an integer query parameter; absent or malformed values yield 0
func queryInt(c echo.Context, name string) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
