package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
)

// SendMessageRequest is the body of a chat turn.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage answers one user message.
// POST /chat/:session_id?model=&provider=
func (h *Handler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	result, err := h.service.HandleTurn(c.Request().Context(), domain.TurnRequest{
		SessionID: c.Param("session_id"),
		Text:      req.Message,
		Model:     c.QueryParam("model"),
		Variant:   resolveVariant(c.QueryParam("provider")),
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"response": result.Reply})
}

// GetHistory lists the messages of a session, oldest first.
// GET /chat/:session_id/history
func (h *Handler) GetHistory(c echo.Context) error {
	messages, err := h.service.GetHistory(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(http.StatusOK, messages)
}

// ClearHistory deletes every message of a session.
// DELETE /chat/:session_id/history
func (h *Handler) ClearHistory(c echo.Context) error {
	sessionID := c.Param("session_id")
	n, err := h.service.ClearHistory(c.Request().Context(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": fmt.Sprintf("History for session %s cleared", sessionID),
		"deleted": n,
	})
}
