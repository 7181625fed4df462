// Package http provides the HTTP server of the chatbot.
package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/gogo/chatbot/internal/config"
	"github.com/xiaot623/gogo/chatbot/internal/hub"
	"github.com/xiaot623/gogo/chatbot/internal/service"
	v1 "github.com/xiaot623/gogo/chatbot/internal/transport/http/v1"
)

// NewServer creates and configures the public HTTP server, including the
// WebSocket endpoint.
func NewServer(svc *service.Service, h *hub.Hub, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	level := logLevel(cfg.LogLevel)
	e.Logger.SetLevel(level)

	// Middleware
	// Request lines are info level.
	if level <= log.INFO {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	v1.NewHandler(svc, h, cfg).RegisterRoutes(e)

	return e
}

// logLevel maps LOG_LEVEL to an echo logger level. Unknown values mean info.
func logLevel(name string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}
