// Package v1 provides the HTTP and WebSocket handlers of the chat API.
package v1

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatbot/internal/config"
	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/hub"
	"github.com/xiaot623/gogo/chatbot/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service  *service.Service
	hub      *hub.Hub
	cfg      *config.Config
	upgrader websocket.Upgrader
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, h *hub.Hub, cfg *config.Config) *Handler {
	return &Handler{
		service: svc,
		hub:     h,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the chat routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/chat/models", h.ListModels)

	// Sessions
	e.POST("/chat/new", h.CreateSession)
	e.GET("/chat/sessions", h.ListSessions)
	e.PUT("/chat/sessions/:session_id", h.RenameSession)
	e.DELETE("/chat/sessions/:session_id", h.DeleteSession)

	// Messages
	e.POST("/chat/:session_id", h.SendMessage)
	e.GET("/chat/:session_id/history", h.GetHistory)
	e.DELETE("/chat/:session_id/history", h.ClearHistory)

	e.GET("/chat/:session_id/ws", h.HandleWebSocket)
}

// Root returns a liveness banner.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Chatbot API is running"})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// ListModels lists the providers and their models.
// GET /chat/models
func (h *Handler) ListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Models())
}

// errorResponse maps service errors to status codes. Unexpected errors are
// logged and hidden from the caller.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": domain.ErrSessionNotFound.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// resolveVariant parses the provider a caller asked for. Unknown names fall
// back to the configured default.
func resolveVariant(name string) domain.ProviderVariant {
	variant, ok := domain.ParseVariant(name, "")
	if !ok && name != "" {
		log.Printf("WARN: unknown provider %q, using default", name)
	}
	return variant
}
