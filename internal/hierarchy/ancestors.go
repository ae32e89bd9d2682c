package hierarchy

import (
	"kinfolk/internal/family/models"
)

// ancestorScan is the accumulator threaded through FindAncestors.
type ancestorScan struct {
	roots    []models.Person
	excluded map[string]struct{}
}

// step decides one member: a parentless member not already excluded becomes
// a root, and it and all of its union partners are excluded from then on.
func (acc ancestorScan) step(idx *index, m models.Person) ancestorScan {
	if m.HasParents() {
		return acc
	}
	if _, seen := acc.excluded[m.ID]; seen {
		return acc
	}
	acc.roots = append(acc.roots, m)
	acc.excluded[m.ID] = struct{}{}
	for _, u := range idx.unionsOfPerson(m.ID) {
		if partner, ok := u.Other(m.ID); ok {
			acc.excluded[partner] = struct{}{}
		}
	}
	return acc
}

// FindAncestors returns every member without a recorded father or mother,
// in input order, skipping the partners of roots already selected so that a
// couple produces one report instead of two overlapping ones.
func FindAncestors(members []models.Person, unions []models.Union) []models.Person {
	idx := newIndex(members, unions)
	acc := ancestorScan{excluded: make(map[string]struct{})}
	for _, m := range members {
		acc = acc.step(idx, m)
	}
	return acc.roots
}
