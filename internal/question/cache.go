package question

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"atpl-quiz-service/internal/domain"
)

// Source provides the question set and its manifest.
type Source interface {
	Load(ctx context.Context) ([]domain.Question, Manifest, error)
}

// Cache caches the loaded question set with a TTL so concurrent logins do
// not rescan the directory tree.
type Cache struct {
	source Source
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu     sync.RWMutex
	cached *snapshot
}

type snapshot struct {
	questions []domain.Question
	manifest  Manifest
	expiresAt time.Time
}

func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Questions returns the cached question set, reloading it when expired.
func (c *Cache) Questions(ctx context.Context) ([]domain.Question, Manifest, error) {
	now := c.clock()

	c.mu.RLock()
	if s := c.cached; s != nil && s.expiresAt.After(now) {
		c.mu.RUnlock()
		return s.questions, s.manifest, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if s := c.cached; s != nil && s.expiresAt.After(now) {
			c.mu.RUnlock()
			return s, nil
		}
		c.mu.RUnlock()

		questions, manifest, err := c.source.Load(ctx)
		if err != nil {
			return nil, err
		}

		s := &snapshot{
			questions: questions,
			manifest:  manifest,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Lock()
		c.cached = s
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, Manifest{}, err
	}
	s := result.(*snapshot)
	return s.questions, s.manifest, nil
}

func (c *Cache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
