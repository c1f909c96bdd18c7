package widget

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/critterhq/critter-widget/backend/internal/logger"
	chatservice "github.com/critterhq/critter-widget/backend/internal/service/chat"
)

// Handler holds one websocket per embedded widget so replies are pushed
// instead of polled. Widgets embed on arbitrary customer sites, so origin
// checks are deliberately open.
type Handler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// New creates the widget websocket handler.
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widget/ws/{sessionID}", h.handleWebSocket)
}

type inboundEnvelope struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

type outboundEnvelope struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L.Error("websocket upgrade failed", "sessionId", sessionID, "error", err)
		return
	}
	defer conn.Close()

	logger.L.Info("widget connected", "sessionId", sessionID)

	for {
		var inbound inboundEnvelope
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.L.Warn("widget connection closed unexpectedly", "sessionId", sessionID, "error", err)
			}
			return
		}

		switch inbound.Type {
		case "message":
			h.handleMessage(conn, r, sessionID, inbound.Content)
		default:
			writeEnvelope(conn, outboundEnvelope{
				Type:      "error",
				SessionID: sessionID,
				Data:      map[string]string{"message": "unsupported message type: " + inbound.Type},
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
}

func (h *Handler) handleMessage(conn *websocket.Conn, r *http.Request, sessionID, content string) {
	reply, err := h.chatSvc.SendMessage(r.Context(), sessionID, content)
	if err != nil {
		message := "failed to process message"
		switch {
		case errors.Is(err, chatservice.ErrMessageRequired),
			errors.Is(err, chatservice.ErrSendInFlight):
			message = err.Error()
		}
		writeEnvelope(conn, outboundEnvelope{
			Type:      "error",
			SessionID: sessionID,
			Data:      map[string]string{"message": message},
			Timestamp: time.Now().UnixMilli(),
		})
		return
	}

	writeEnvelope(conn, outboundEnvelope{
		Type:      "reply",
		SessionID: sessionID,
		Data:      reply,
		Timestamp: time.Now().UnixMilli(),
	})
}

func writeEnvelope(conn *websocket.Conn, env outboundEnvelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		logger.L.Error("marshal websocket envelope failed", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		logger.L.Warn("websocket write failed", "error", err)
	}
}
