package memory

import (
	"context"
	"encoding/json"
	"sync"

	"atpl-quiz-service/internal/app"
	"atpl-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. Sessions
// are stored as deep copies so callers cannot mutate stored state without
// going through Save, mirroring an out-of-process store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*app.Session)}
}

func (s *SessionStore) Get(_ context.Context, id string) (*app.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return clone(sess)
}

func (s *SessionStore) Save(_ context.Context, sess *app.Session) error {
	copied, err := clone(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = copied
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func clone(sess *app.Session) (*app.Session, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	var copied app.Session
	if err := json.Unmarshal(data, &copied); err != nil {
		return nil, err
	}
	return &copied, nil
}
