package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"corporate-agent/internal/metrics"
)

const liveChatSender = "WebSocket User"

// handleLiveChat upgrades to a websocket and answers every text frame with
// exactly one text frame. A frame is treated as one complete message.
func (s *Server) handleLiveChat(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		writeText(w, http.StatusBadRequest, "Expected websocket")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		slog.Warn("live chat: upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	metrics.LiveChatConnections.Inc()
	defer metrics.LiveChatConnections.Dec()

	conn.SetReadLimit(s.maxMessageSize)
	ctx := r.Context()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				slog.Warn("live chat: read failed", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		reply := s.replies.Reply(ctx, string(data), liveChatSender)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			slog.Warn("live chat: write failed", "err", err)
			return
		}
	}
}
