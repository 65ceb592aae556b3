package app_test

import (
	"errors"
	"testing"
	"time"

	"atpl-quiz-service/internal/app"
	"atpl-quiz-service/internal/domain"
)

func threeQuestions() []domain.Question {
	return []domain.Question{
		{Text: "Q1", Options: []string{"A", "B", "C"}, Answer: "B", Explanation: "Because B."},
		{Text: "Q2", Options: []string{"A", "B", "C"}, Answer: "A"},
		{Text: "Q3", Options: []string{"A", "B", "C"}, Answer: "C", Explanation: "C it is."},
	}
}

func TestNewSessionStateLengths(t *testing.T) {
	sess := app.NewSession("alice", threeQuestions(), time.Now())

	if len(sess.Answered) != 3 || len(sess.Choices) != 3 || len(sess.Feedback) != 3 {
		t.Fatalf("state slices must match question count, got %d/%d/%d",
			len(sess.Answered), len(sess.Choices), len(sess.Feedback))
	}
	if sess.Current != 0 || sess.Score != 0 {
		t.Fatalf("fresh session must start at question 0 with score 0, got %d/%d", sess.Current, sess.Score)
	}
	if sess.ID == "" {
		t.Fatal("session must get an ID")
	}
}

func TestSubmitFeedback(t *testing.T) {
	sess := app.NewSession("alice", threeQuestions(), time.Now())

	res, err := sess.Submit(0, "B")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !res.Correct || res.Score != 1 {
		t.Fatalf("expected correct answer worth 1 point, got %+v", res)
	}
	if res.Feedback != "Correct!\n\nExplanation: Because B." {
		t.Fatalf("unexpected feedback: %q", res.Feedback)
	}

	res, err = sess.Submit(1, "C")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Correct || res.Score != 1 {
		t.Fatalf("wrong answer must not score, got %+v", res)
	}
	if res.Feedback != "Wrong! Correct: A\n\nExplanation: No explanation." {
		t.Fatalf("unexpected feedback: %q", res.Feedback)
	}
}

func TestSubmitIdempotent(t *testing.T) {
	sess := app.NewSession("alice", threeQuestions(), time.Now())

	if _, err := sess.Submit(0, "B"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// a repeat, even with a different choice, must not change anything
	res, err := sess.Submit(0, "A")
	if err != nil {
		t.Fatalf("repeat submit failed: %v", err)
	}
	if !res.AlreadyAnswered {
		t.Fatal("repeat submission must report AlreadyAnswered")
	}
	if !res.Correct || res.Score != 1 {
		t.Fatalf("repeat submission must report the original outcome, got %+v", res)
	}
	if sess.Choices[0] != "B" {
		t.Fatalf("original choice must be preserved, got %q", sess.Choices[0])
	}
}

func TestSubmitIndexOutOfRange(t *testing.T) {
	sess := app.NewSession("alice", threeQuestions(), time.Now())

	for _, i := range []int{-1, 3, 100} {
		if _, err := sess.Submit(i, "A"); !errors.Is(err, domain.ErrQuestionIndex) {
			t.Fatalf("index %d: expected ErrQuestionIndex, got %v", i, err)
		}
	}
}

func TestAdvanceClamped(t *testing.T) {
	sess := app.NewSession("alice", threeQuestions(), time.Now())

	if sess.Advance(app.DirectionPrev) {
		t.Fatal("prev at the first question must not move")
	}
	if !sess.Advance(app.DirectionNext) || sess.Current != 1 {
		t.Fatalf("next must move to 1, got %d", sess.Current)
	}
	sess.Advance(app.DirectionNext)
	if sess.Advance(app.DirectionNext) {
		t.Fatal("next at the last question must not move")
	}
	if sess.Current != 2 {
		t.Fatalf("index must stay clamped at 2, got %d", sess.Current)
	}
}

func TestCompletedAndReset(t *testing.T) {
	questions := threeQuestions()
	sess := app.NewSession("alice", questions, time.Now())

	for i, q := range questions {
		if _, err := sess.Submit(i, q.Answer); err != nil {
			t.Fatalf("submit %d failed: %v", i, err)
		}
	}
	if !sess.Completed() {
		t.Fatal("all correct answers must complete the session")
	}

	sess.Reset()
	if sess.Score != 0 || sess.Current != 0 {
		t.Fatalf("reset must zero score and index, got %d/%d", sess.Score, sess.Current)
	}
	for i := range sess.Questions {
		if sess.Answered[i] || sess.Choices[i] != "" || sess.Feedback[i] != "" {
			t.Fatalf("reset must clear per-question state at %d", i)
		}
	}
	if len(sess.Questions) != 3 {
		t.Fatal("reset must keep the question sequence")
	}
}

func TestExpired(t *testing.T) {
	start := time.Now()
	sess := app.NewSession("alice", threeQuestions(), start)
	timeout := 300 * time.Second

	if sess.Expired(start.Add(timeout), timeout) {
		t.Fatal("exactly at the timeout the session is still alive")
	}
	if !sess.Expired(start.Add(timeout+time.Second), timeout) {
		t.Fatal("past the timeout the session must be expired")
	}

	sess.Touch(start.Add(timeout))
	if sess.Expired(start.Add(timeout+time.Second), timeout) {
		t.Fatal("touch must refresh the inactivity clock")
	}
}
