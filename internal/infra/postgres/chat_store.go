package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"atpl-quiz-service/internal/domain"
)

// ChatStore is the Postgres-backed chat_messages collection.
type ChatStore struct {
	pool *pgxpool.Pool
}

func NewChatStore(pool *pgxpool.Pool) *ChatStore {
	return &ChatStore{pool: pool}
}

func (s *ChatStore) Append(ctx context.Context, msg domain.ChatMessage) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_messages (user_id, message, at) VALUES ($1, $2, $3)`,
		msg.UserID, msg.Message, msg.At,
	)
	if err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

func (s *ChatStore) Recent(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, message, at FROM (
		   SELECT id, user_id, message, at FROM chat_messages ORDER BY at DESC, id DESC LIMIT $1
		 ) latest ORDER BY at ASC, id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent chat messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.UserID, &msg.Message, &msg.At); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (s *ChatStore) TrimOldest(ctx context.Context, keep int) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM chat_messages WHERE id NOT IN (
		   SELECT id FROM chat_messages ORDER BY at DESC, id DESC LIMIT $1
		 )`,
		keep,
	)
	if err != nil {
		return fmt.Errorf("trim chat messages: %w", err)
	}
	return nil
}
