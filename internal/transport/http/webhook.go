package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"corporate-agent/internal/domain"
	"corporate-agent/internal/usecase"
)

const maxUpdateSize = 1 << 20

// telegramUpdate is the subset of a Bot API Update the relay reads.
type telegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *telegramMessage `json:"message"`
}

type telegramMessage struct {
	Chat *telegramChat `json:"chat"`
	Text string        `json:"text"`
	From *telegramUser `json:"from"`
}

type telegramChat struct {
	ID int64 `json:"id"`
}

type telegramUser struct {
	FirstName string `json:"first_name"`
}

func (m *telegramMessage) incoming() domain.IncomingMessage {
	msg := domain.IncomingMessage{ChatID: m.Chat.ID, Text: m.Text}
	if m.From != nil {
		msg.SenderName = m.From.FirstName
	}
	return msg
}

// handleWebhook answers "OK" for every processed or ignored update and
// "Error" with 500 for anything unexpected, leaving retries to Telegram.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	reqID := chimw.GetReqID(r.Context())
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.Error("webhook panic", "request_id", reqID, "err", fmt.Sprint(rec))
			writeText(w, http.StatusInternalServerError, "Error")
		}
	}()

	var update telegramUpdate
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpdateSize)).Decode(&update); err != nil {
		slog.Error("webhook: decode update", "request_id", reqID, "err", err)
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}
	if update.Message == nil {
		writeText(w, http.StatusOK, "OK")
		return
	}
	if update.Message.Chat == nil {
		slog.Error("webhook: message without chat", "request_id", reqID, "update_id", update.UpdateID)
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}

	// External calls are bounded by client timeouts only; a caller that
	// hangs up must not abort the reply.
	ctx := context.WithoutCancel(r.Context())
	if err := s.relay.Handle(ctx, update.Message.incoming()); err != nil {
		attrs := []any{"request_id", reqID, "update_id", update.UpdateID, "err", err}
		var ucErr *usecase.Error
		if errors.As(err, &ucErr) {
			attrs = append(attrs, "code", ucErr.Code, "reason", ucErr.Reason)
		}
		slog.Error("webhook: relay failed", attrs...)
		writeText(w, http.StatusInternalServerError, "Error")
		return
	}
	writeText(w, http.StatusOK, "OK")
}
