package app

import (
	"context"
	"strings"
	"time"

	"atpl-quiz-service/internal/domain"
)

// ChatRetention is how many messages the shared chat keeps; older ones are
// evicted on every post.
const ChatRetention = 4

// ChatStore abstracts where chat messages live (in-memory, Postgres).
type ChatStore interface {
	Append(ctx context.Context, msg domain.ChatMessage) error
	// Recent returns the most recent limit messages in ascending timestamp order.
	Recent(ctx context.Context, limit int) ([]domain.ChatMessage, error)
	// TrimOldest deletes everything but the most recent keep messages.
	TrimOldest(ctx context.Context, keep int) error
}

// ChatLog is the bounded shared chat: append, evict beyond the retention
// window, read back in ascending order.
type ChatLog struct {
	store ChatStore
	users UserStore
	clock func() time.Time
}

func NewChatLog(store ChatStore, users UserStore) *ChatLog {
	return &ChatLog{store: store, users: users, clock: time.Now}
}

// Post appends a message when it is non-empty after trimming whitespace and
// enforces the retention window. It reports whether anything was posted.
// Posting also refreshes the sender's last_active.
func (l *ChatLog) Post(ctx context.Context, userID, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}

	now := l.clock()
	if err := l.store.Append(ctx, domain.ChatMessage{UserID: userID, Message: text, At: now}); err != nil {
		return false, err
	}
	if err := l.store.TrimOldest(ctx, ChatRetention); err != nil {
		return false, err
	}
	if l.users != nil {
		if err := l.users.TouchLastActive(ctx, userID, now); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Recent returns the retained window, oldest first.
func (l *ChatLog) Recent(ctx context.Context) ([]domain.ChatMessage, error) {
	return l.store.Recent(ctx, ChatRetention)
}
