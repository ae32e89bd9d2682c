package hierarchy

import (
	"math"
	"slices"

	"kinfolk/internal/family/models"
)

// index answers the lookups both builders need in O(1) per query.
// It is built once per call and discarded with it.
type index struct {
	members  []models.Person
	byID     map[string]models.Person
	children map[string][]models.Person
	unions   []models.Union
	unionsOf map[string][]models.Union
}

func newIndex(members []models.Person, unions []models.Union) *index {
	idx := &index{
		members:  members,
		byID:     make(map[string]models.Person, len(members)),
		children: make(map[string][]models.Person),
		unions:   unions,
		unionsOf: make(map[string][]models.Union),
	}
	for _, m := range members {
		idx.byID[m.ID] = m
		if m.FatherID != "" {
			idx.children[m.FatherID] = append(idx.children[m.FatherID], m)
		}
		if m.MotherID != "" && m.MotherID != m.FatherID {
			idx.children[m.MotherID] = append(idx.children[m.MotherID], m)
		}
	}
	for _, u := range unions {
		if u.Person1ID != "" {
			idx.unionsOf[u.Person1ID] = append(idx.unionsOf[u.Person1ID], u)
		}
		if u.Person2ID != "" && u.Person2ID != u.Person1ID {
			idx.unionsOf[u.Person2ID] = append(idx.unionsOf[u.Person2ID], u)
		}
	}
	return idx
}

func (idx *index) lookup(id string) (models.Person, bool) {
	if id == "" {
		return models.Person{}, false
	}
	p, ok := idx.byID[id]
	return p, ok
}

// childrenOf returns the children of id in input order.
func (idx *index) childrenOf(id string) []models.Person {
	return idx.children[id]
}

func (idx *index) hasChildren(id string) bool {
	return len(idx.children[id]) > 0
}

func (idx *index) hasUnion(id string) bool {
	return len(idx.unionsOf[id]) > 0
}

// unionsOfPerson returns every union naming id, in input order.
func (idx *index) unionsOfPerson(id string) []models.Union {
	return idx.unionsOf[id]
}

// unionBetween finds the first union joining a and b in either order.
func (idx *index) unionBetween(a, b string) (models.Union, bool) {
	for _, u := range idx.unionsOf[a] {
		if u.Joins(a, b) {
			return u, true
		}
	}
	return models.Union{}, false
}

// SortByBirth returns a copy of people ordered by ascending birth date.
// Undated people sort after every dated one; ties keep input order.
func SortByBirth(people []models.Person) []models.Person {
	sorted := slices.Clone(people)
	slices.SortStableFunc(sorted, func(a, b models.Person) int {
		ka, kb := birthKey(a), birthKey(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return sorted
}

func birthKey(p models.Person) int64 {
	if p.BirthDate == nil {
		return math.MaxInt64
	}
	return p.BirthDate.Unix()
}
