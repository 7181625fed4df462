package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RenameSessionRequest is the body of a rename.
type RenameSessionRequest struct {
	Name string `json:"name"`
}

// CreateSession starts a new chat session.
// POST /chat/new
func (h *Handler) CreateSession(c echo.Context) error {
	session, err := h.service.CreateSession(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ListSessions lists sessions, newest first.
// GET /chat/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sessions, err := h.service.ListSessions(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, sessions)
}

// RenameSession changes the display name of a session.
// PUT /chat/sessions/:session_id
func (h *Handler) RenameSession(c echo.Context) error {
	var req RenameSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	session, err := h.service.RenameSession(c.Request().Context(), c.Param("session_id"), req.Name)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session and its history.
// DELETE /chat/sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	if err := h.service.DeleteSession(c.Request().Context(), sessionID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}
