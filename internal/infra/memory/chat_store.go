package memory

import (
	"context"
	"sort"
	"sync"

	"atpl-quiz-service/internal/domain"
)

// ChatStore is an in-memory implementation of app.ChatStore.
type ChatStore struct {
	mu       sync.RWMutex
	messages []domain.ChatMessage
}

func NewChatStore() *ChatStore {
	return &ChatStore{}
}

func (s *ChatStore) Append(_ context.Context, msg domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	sort.SliceStable(s.messages, func(i, j int) bool {
		return s.messages[i].At.Before(s.messages[j].At)
	})
	return nil
}

func (s *ChatStore) Recent(_ context.Context, limit int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.messages) - limit
	if start < 0 {
		start = 0
	}
	out := make([]domain.ChatMessage, len(s.messages)-start)
	copy(out, s.messages[start:])
	return out, nil
}

func (s *ChatStore) TrimOldest(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if extra := len(s.messages) - keep; extra > 0 {
		s.messages = append(s.messages[:0:0], s.messages[extra:]...)
	}
	return nil
}
