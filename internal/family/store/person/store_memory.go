package person

import (
	"context"
	"sort"
	"strings"
	"sync"

	"kinfolk/internal/family/models"
	"kinfolk/pkg/platform/sentinel"
)

// InMemory keeps people in insertion order so snapshots are stable.
type InMemory struct {
	mu     sync.RWMutex
	order  []string
	people map[string]models.Person
}

func NewInMemory() *InMemory {
	return &InMemory{people: make(map[string]models.Person)}
}

func (s *InMemory) Create(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.people[p.ID]; exists {
		return sentinel.ErrConflict
	}
	s.people[p.ID] = *p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

// FindByIDs returns the people that exist among ids, in store order.
func (s *InMemory) FindByIDs(_ context.Context, ids []string) ([]models.Person, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Person
	for _, id := range s.order {
		if _, ok := want[id]; ok {
			out = append(out, s.people[id])
		}
	}
	return out, nil
}

func (s *InMemory) List(_ context.Context) ([]models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Person, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.people[id])
	}
	return out, nil
}

// ListChildren returns people naming parentID as father or mother.
func (s *InMemory) ListChildren(_ context.Context, parentID string) ([]models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Person
	for _, id := range s.order {
		if p := s.people[id]; p.IsChildOf(parentID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Search matches query case-insensitively anywhere in the full name,
// ordered by name.
func (s *InMemory) Search(_ context.Context, query, excludeID string, limit int) ([]models.Person, error) {
	needle := strings.ToLower(query)
	s.mu.RLock()
	var out []models.Person
	for _, id := range s.order {
		p := s.people[id]
		if id == excludeID || !strings.Contains(strings.ToLower(p.FullName), needle) {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].FullName) < strings.ToLower(out[j].FullName)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) Update(_ context.Context, p *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.people[p.ID] = *p
	return nil
}

func (s *InMemory) SetParents(_ context.Context, id, fatherID, motherID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.people[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.FatherID = fatherID
	p.MotherID = motherID
	s.people[id] = p
	return nil
}

// Delete removes id and clears every parent reference pointing at it.
func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.people, id)
	order := s.order[:0]
	for _, other := range s.order {
		if other == id {
			continue
		}
		order = append(order, other)
		p := s.people[other]
		if p.FatherID == id {
			p.FatherID = ""
		}
		if p.MotherID == id {
			p.MotherID = ""
		}
		s.people[other] = p
	}
	s.order = order
	return nil
}
