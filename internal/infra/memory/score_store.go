package memory

import (
	"context"
	"sync"
	"time"

	"atpl-quiz-service/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreStore. Answer
// history survives score upserts, matching the document-store semantics.
type ScoreStore struct {
	mu      sync.RWMutex
	records map[string]*domain.ScoreRecord
	order   []string
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{records: make(map[string]*domain.ScoreRecord)}
}

func (s *ScoreStore) Upsert(_ context.Context, rec domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[rec.UserID]
	if !ok {
		copied := rec
		s.records[rec.UserID] = &copied
		s.order = append(s.order, rec.UserID)
		return nil
	}
	existing.Score = rec.Score
	existing.TotalQuestions = rec.TotalQuestions
	existing.LastUpdate = rec.LastUpdate
	return nil
}

func (s *ScoreStore) AppendAnswer(_ context.Context, userID string, ev domain.AnswerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		rec = &domain.ScoreRecord{UserID: userID, LastUpdate: ev.At}
		s.records[userID] = rec
		s.order = append(s.order, userID)
	}
	rec.Answers = append(rec.Answers, ev)
	return nil
}

func (s *ScoreStore) List(_ context.Context) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ScoreRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, *s.records[id])
	}
	return records, nil
}

func (s *ScoreStore) ResetAll(_ context.Context, totalQuestions int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		rec.Score = 0
		rec.TotalQuestions = totalQuestions
		rec.LastUpdate = at
	}
	return nil
}
