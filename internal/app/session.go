package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"atpl-quiz-service/internal/domain"
)

const noExplanation = "No explanation."

// Direction is a navigation step through the question sequence.
type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// Session holds the in-memory quiz progress for one logged-in user. Fields
// are exported so session stores can serialize the whole thing.
//
// Invariant: Answered, Choices and Feedback always have the same length as
// Questions.
type Session struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Questions  []domain.Question `json:"questions"`
	Current    int               `json:"current"`
	Answered   []bool            `json:"answered"`
	Choices    []string          `json:"choices"`
	Feedback   []string          `json:"feedback"`
	Score      int               `json:"score"`
	StartedAt  time.Time         `json:"started_at"`
	LastActive time.Time         `json:"last_active"`
}

// NewSession creates a fresh session over the given question sequence.
func NewSession(userID string, questions []domain.Question, now time.Time) *Session {
	return &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Questions:  questions,
		Answered:   make([]bool, len(questions)),
		Choices:    make([]string, len(questions)),
		Feedback:   make([]string, len(questions)),
		StartedAt:  now,
		LastActive: now,
	}
}

// SubmitResult is the outcome of a single answer submission.
type SubmitResult struct {
	AlreadyAnswered bool   `json:"already_answered"`
	Correct         bool   `json:"correct"`
	Feedback        string `json:"feedback"`
	Score           int    `json:"score"`
}

// Submit records the choice for question i. Submitting an already-answered
// index is a no-op that reports AlreadyAnswered instead of mutating state,
// which guards against duplicate submissions from repeated UI triggers.
func (s *Session) Submit(i int, choice string) (SubmitResult, error) {
	if i < 0 || i >= len(s.Questions) {
		return SubmitResult{}, domain.ErrQuestionIndex
	}
	if s.Answered[i] {
		return SubmitResult{
			AlreadyAnswered: true,
			Correct:         s.Choices[i] == s.Questions[i].Answer,
			Feedback:        s.Feedback[i],
			Score:           s.Score,
		}, nil
	}

	q := s.Questions[i]
	s.Choices[i] = choice
	s.Answered[i] = true

	explanation := q.Explanation
	if explanation == "" {
		explanation = noExplanation
	}

	correct := choice == q.Answer
	if correct {
		s.Score++
		s.Feedback[i] = fmt.Sprintf("Correct!\n\nExplanation: %s", explanation)
	} else {
		s.Feedback[i] = fmt.Sprintf("Wrong! Correct: %s\n\nExplanation: %s", q.Answer, explanation)
	}

	return SubmitResult{
		Correct:  correct,
		Feedback: s.Feedback[i],
		Score:    s.Score,
	}, nil
}

// Advance moves the current index by one in the given direction, clamped to
// the question range. It reports whether the index actually moved.
func (s *Session) Advance(dir Direction) bool {
	switch dir {
	case DirectionPrev:
		if s.Current > 0 {
			s.Current--
			return true
		}
	case DirectionNext:
		if s.Current < len(s.Questions)-1 {
			s.Current++
			return true
		}
	}
	return false
}

// Completed reports whether the session reached the maximum score.
func (s *Session) Completed() bool {
	return len(s.Questions) > 0 && s.Score >= len(s.Questions)
}

// Reset reinitializes the session in place: score zero, nothing answered,
// back to the first question. The question sequence is kept.
func (s *Session) Reset() {
	s.Score = 0
	s.Current = 0
	for i := range s.Questions {
		s.Answered[i] = false
		s.Choices[i] = ""
		s.Feedback[i] = ""
	}
}

// Expired reports whether the session has been idle longer than timeout.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return timeout > 0 && now.Sub(s.LastActive) > timeout
}

// Touch refreshes the session's inactivity clock.
func (s *Session) Touch(now time.Time) {
	s.LastActive = now
}
