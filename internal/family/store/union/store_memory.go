package union

import (
	"context"
	"sync"

	"kinfolk/internal/family/models"
	"kinfolk/pkg/platform/sentinel"
)

// InMemory keeps unions in insertion order. At most one union exists per
// unordered pair.
type InMemory struct {
	mu     sync.RWMutex
	unions []models.Union
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Create(_ context.Context, u *models.Union) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.unions {
		if existing.ID == u.ID || existing.Joins(u.Person1ID, u.Person2ID) {
			return sentinel.ErrConflict
		}
	}
	s.unions = append(s.unions, *u)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Union, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.unions {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// FindByPair looks the pair up in either order.
func (s *InMemory) FindByPair(_ context.Context, a, b string) (*models.Union, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.unions {
		if u.Joins(a, b) {
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByPerson(_ context.Context, personID string) ([]models.Union, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Union
	for _, u := range s.unions {
		if u.Involves(personID) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *InMemory) List(_ context.Context) ([]models.Union, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Union{}, s.unions...), nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.unions {
		if u.ID == id {
			s.unions = append(s.unions[:i], s.unions[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// DeleteByPerson removes every union naming personID.
func (s *InMemory) DeleteByPerson(_ context.Context, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.unions[:0]
	for _, u := range s.unions {
		if !u.Involves(personID) {
			kept = append(kept, u)
		}
	}
	s.unions = kept
	return nil
}
