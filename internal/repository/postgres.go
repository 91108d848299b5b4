package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"corporate-agent/internal/domain"
)

// pgExecer is the part of *pgxpool.Pool the store needs.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createConversationsPG = `CREATE TABLE IF NOT EXISTS conversations (
	id BIGSERIAL PRIMARY KEY,
	chat_id TEXT NOT NULL,
	message TEXT NOT NULL,
	response TEXT NOT NULL,
	timestamp BIGINT NOT NULL
)`

const insertConversationPG = `INSERT INTO conversations (chat_id, message, response, timestamp) VALUES ($1, $2, $3, $4)`

// PostgresStore appends conversation records to PostgreSQL.
type PostgresStore struct {
	db   pgExecer
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and ensures the table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("repository: database url must not be empty")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("repository: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createConversationsPG); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repository: postgres migration failed: %w", err)
	}
	return &PostgresStore{db: pool, pool: pool}, nil
}

// AppendConversation inserts rec.
func (s *PostgresStore) AppendConversation(ctx context.Context, rec domain.ConversationRecord) error {
	tag, err := s.db.Exec(ctx, insertConversationPG, rec.ChatID, rec.Message, rec.Response, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("repository: postgres insert: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("repository: postgres insert affected %d rows", tag.RowsAffected())
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
