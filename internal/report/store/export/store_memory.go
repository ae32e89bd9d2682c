package export

import (
	"context"
	"sync"
	"time"

	"kinfolk/internal/report/models"
	"kinfolk/pkg/platform/sentinel"
)

// InMemory keeps exports until they expire. Expired entries are dropped
// lazily on access and on each save.
type InMemory struct {
	mu      sync.RWMutex
	exports map[string]models.Export
	now     func() time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{exports: make(map[string]models.Export), now: time.Now}
}

func (s *InMemory) Save(_ context.Context, e *models.Export, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, existing := range s.exports {
		if existing.Expired(now) {
			delete(s.exports, id)
		}
	}
	stored := *e
	if stored.ExpiresAt.IsZero() && ttl > 0 {
		stored.ExpiresAt = now.Add(ttl)
	}
	stored.Body = append([]byte(nil), e.Body...)
	s.exports[e.ID] = stored
	return nil
}

func (s *InMemory) Get(_ context.Context, id string) (*models.Export, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exports[id]
	if !ok || e.Expired(s.now()) {
		return nil, sentinel.ErrNotFound
	}
	return &e, nil
}
