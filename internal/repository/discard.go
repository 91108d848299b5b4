package repository

import (
	"context"
	"log/slog"

	"corporate-agent/internal/domain"
)

// Discard drops records. Used when no database is configured.
type Discard struct{}

func (Discard) AppendConversation(_ context.Context, rec domain.ConversationRecord) error {
	slog.Debug("conversation store disabled, record dropped", "chat_id", rec.ChatID)
	return nil
}
