package v1

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/chatbot/internal/domain"
	"github.com/xiaot623/gogo/chatbot/internal/hub"
	"github.com/xiaot623/gogo/chatbot/internal/protocol"
)

// HandleWebSocket upgrades the request and subscribes the connection to the
// session's live messages. Incoming "message" frames run a turn.
// GET /chat/:session_id/ws
func (h *Handler) HandleWebSocket(c echo.Context) error {
	sessionID := c.Param("session_id")
	if _, err := h.service.GetSession(c.Request().Context(), sessionID); err != nil {
		return errorResponse(c, err)
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	conn := h.hub.NewConnection(ws, sessionID)
	if !h.hub.Register(conn) {
		ws.Close()
		return nil
	}

	ws.SetReadLimit(h.cfg.WSMaxMessageSize)

	go h.writePump(conn)
	go h.readPump(conn)

	return nil
}

// pendingFrames bounds how many client frames may wait for a turn on one
// connection.
const pendingFrames = 16

// readPump keeps reading while turns run, so pongs are handled and the read
// deadline keeps moving. Frames are handed to a single worker to preserve
// their order.
func (h *Handler) readPump(conn *hub.Connection) {
	frames := make(chan []byte, pendingFrames)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		for data := range frames {
			h.handleFrame(conn, data)
		}
	}()

	defer func() {
		close(frames)
		<-workerDone
		h.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(h.cfg.WSReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.cfg.WSReadTimeout))
		return nil
	})

	for {
		_, data, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(h.cfg.WSReadTimeout))

		select {
		case frames <- data:
		default:
			h.sendError(conn, "", protocol.ErrorCodeBusy, "too many pending messages")
		}
	}
}

func (h *Handler) writePump(conn *hub.Connection) {
	ticker := time.NewTicker(h.cfg.WSPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WSWriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Failed to write message: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.cfg.WSWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleFrame runs one client frame to completion.
func (h *Handler) handleFrame(conn *hub.Connection, data []byte) {
	var msg protocol.ChatMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(conn, "", protocol.ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}
	if msg.Type != protocol.TypeMessage {
		h.sendError(conn, msg.RequestID, protocol.ErrorCodeInvalidMessage, "unknown message type: "+msg.Type)
		return
	}

	result, err := h.service.HandleTurn(context.Background(), domain.TurnRequest{
		SessionID: conn.SessionID,
		Text:      msg.Message,
		Model:     msg.Model,
		Variant:   resolveVariant(msg.Provider),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.sendError(conn, msg.RequestID, protocol.ErrorCodeSessionNotFound, domain.ErrSessionNotFound.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			h.sendError(conn, msg.RequestID, protocol.ErrorCodeInvalidMessage, err.Error())
		default:
			log.Printf("ERROR: turn failed for session %s: %v", conn.SessionID, err)
			h.sendError(conn, msg.RequestID, protocol.ErrorCodeInternal, "internal server error")
		}
		return
	}

	resp := protocol.ResponseMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeResponse,
			Ts:        time.Now().UnixMilli(),
			RequestID: msg.RequestID,
			SessionID: conn.SessionID,
		},
		Response: result.Reply,
		Model:    result.Model,
		Provider: string(result.Variant),
		Fallback: result.Fallback,
	}
	if err := h.hub.SendJSONToConnection(conn, resp); err != nil {
		log.Printf("WARN: failed to send response on %s: %v", conn.ID, err)
	}
}

func (h *Handler) sendError(conn *hub.Connection, requestID, code, message string) {
	errMsg := protocol.ErrorMessage{
		BaseMessage: protocol.BaseMessage{
			Type:      protocol.TypeError,
			Ts:        time.Now().UnixMilli(),
			RequestID: requestID,
			SessionID: conn.SessionID,
		},
		Code:    code,
		Message: message,
	}
	if err := h.hub.SendJSONToConnection(conn, errMsg); err != nil {
		log.Printf("WARN: failed to send error on %s: %v", conn.ID, err)
	}
}
