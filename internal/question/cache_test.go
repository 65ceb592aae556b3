package question_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"atpl-quiz-service/internal/domain"
	"atpl-quiz-service/internal/question"
)

type countingSource struct {
	loads int64
}

func (s *countingSource) Load(context.Context) ([]domain.Question, question.Manifest, error) {
	atomic.AddInt64(&s.loads, 1)
	return []domain.Question{
		{Text: "Q1", Options: []string{"A", "B"}, Answer: "A"},
	}, question.Manifest{Total: 1}, nil
}

func TestCacheServesFromCache(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{}
	cache := question.NewCache(source, time.Hour)

	for i := 0; i < 5; i++ {
		questions, manifest, err := cache.Questions(ctx)
		if err != nil {
			t.Fatalf("questions failed: %v", err)
		}
		if len(questions) != 1 || manifest.Total != 1 {
			t.Fatalf("unexpected result: %d questions, manifest %+v", len(questions), manifest)
		}
	}

	if got := atomic.LoadInt64(&source.loads); got != 1 {
		t.Fatalf("expected a single load, got %d", got)
	}
}

func TestCacheConcurrentAccessLoadsOnce(t *testing.T) {
	ctx := context.Background()
	source := &countingSource{}
	cache := question.NewCache(source, time.Hour)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			if _, _, err := cache.Questions(ctx); err != nil {
				t.Errorf("questions failed: %v", err)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := atomic.LoadInt64(&source.loads); got != 1 {
		t.Fatalf("concurrent callers must share one load, got %d", got)
	}
}
