package memory

import (
	"context"
	"sync"
	"time"

	"atpl-quiz-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserStore. Listing
// preserves registration order.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	order []string
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Create(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.UserID]; ok {
		return domain.ErrUserExists
	}
	s.users[u.UserID] = u
	s.order = append(s.order, u.UserID)
	return nil
}

func (s *UserStore) Get(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *UserStore) TouchLastActive(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastActive = at
	s.users[userID] = u
	return nil
}
