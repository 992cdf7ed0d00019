package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourusername/dermora-assistant/internal/usecase"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteTimeout = 10 * time.Second
)

type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket live chat for one session. Each {"type":"text"} frame is
// answered with one {"type":"reply"} frame.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	msgs, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		h.respondUseCaseError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("session", sessionID))
	log.Debug("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	go pingLoop(ctx, conn)

	h.send(conn, outgoingMessage{
		Type:      "connected",
		SessionID: sessionID,
		Data: map[string]any{
			"messages":     toMessageResponses(msgs),
			"quickReplies": h.chat.QuickReplies(),
		},
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		if msg.Type != "text" {
			h.send(conn, outgoingMessage{Type: "error", Error: "unsupported message type: " + msg.Type})
			continue
		}

		reply, err := h.chat.ProcessMessage(ctx, sessionID, msg.Text)
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				log.Error("websocket message failed", zap.Error(err))
				h.send(conn, outgoingMessage{Type: "error", Error: "internal error"})
				continue
			}
			h.send(conn, outgoingMessage{Type: "error", Error: err.Error()})
			if errors.Is(err, usecase.ErrSessionNotFound) {
				return
			}
			continue
		}

		h.send(conn, outgoingMessage{Type: "reply", SessionID: sessionID, Data: toReplyResponse(reply)})
	}
}

func (h *Handler) send(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.Debug("websocket write failed", zap.Error(err))
	}
}

// pingLoop uses WriteControl, which is safe alongside the reader's writes
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
