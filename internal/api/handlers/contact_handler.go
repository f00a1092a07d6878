package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/folio-backend/internal/api/response"
	"github.com/welldanyogia/folio-backend/internal/models"
	"github.com/welldanyogia/folio-backend/internal/services"
)

// ContactHandler accepts public contact-form submissions
type ContactHandler struct {
	inbox services.InboxService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(inbox services.InboxService) *ContactHandler {
	return &ContactHandler{inbox: inbox}
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(c echo.Context) error {
	var req models.ContactSubmission
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	message, err := h.inbox.Submit(c.Request().Context(), services.SourceWeb, req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}
