// Package repository persists conversation records. Every backend is
// insert-only: records are never read back, updated or deleted.
package repository

import (
	"context"

	"corporate-agent/internal/domain"
)

// ConversationAppender appends one record per exchange.
type ConversationAppender interface {
	AppendConversation(ctx context.Context, rec domain.ConversationRecord) error
}

const insertConversationSQL = `INSERT INTO conversations (chat_id, message, response, timestamp) VALUES (?, ?, ?, ?)`
