package hierarchy

import (
	"kinfolk/internal/family/models"
)

// BuildFocal builds the bounded three-generation tree around focalID:
// parents, then the focal person beside siblings and spouses, then children.
//
// Anything further away is represented by marker nodes rather than resolved
// people. BuildFocal returns nil when focalID is empty, members is empty or
// focalID does not resolve.
func BuildFocal(members []models.Person, focalID string, unions []models.Union) *TreeNode {
	if focalID == "" || len(members) == 0 {
		return nil
	}
	idx := newIndex(members, unions)
	focal, ok := idx.lookup(focalID)
	if !ok {
		return nil
	}

	parents := resolveParents(idx, focal)
	siblings := findSiblings(members, focal)
	children := SortByBirth(idx.childrenOf(focal.ID))

	focalNode := PersonNode(focal)
	focalNode.Spouses = spouseNodes(idx, focal, children)
	focalNode.Children = childNodes(idx, children)

	siblingNodes := make([]*TreeNode, 0, len(siblings))
	for _, s := range siblings {
		siblingNodes = append(siblingNodes, PersonNode(s))
	}
	generation := append([]*TreeNode{focalNode}, siblingNodes...)

	if len(parents) > 0 {
		structural := parents[0]
		parentNode := PersonNode(structural)
		for _, other := range parents[1:] {
			spouse := PersonNode(other)
			if u, ok := idx.unionBetween(structural.ID, other.ID); ok {
				spouse.Union = &u
			}
			parentNode.Spouses = append(parentNode.Spouses, spouse)
		}
		parentNode.Children = generation

		if structural.HasParents() {
			return VirtualRoot(parentNode)
		}
		return parentNode
	}

	if len(siblingNodes) > 0 {
		return VirtualRoot(generation...)
	}
	return focalNode
}

// resolveParents returns father then mother, dropping unresolved ids.
func resolveParents(idx *index, focal models.Person) []models.Person {
	var parents []models.Person
	if father, ok := idx.lookup(focal.FatherID); ok {
		parents = append(parents, father)
	}
	if mother, ok := idx.lookup(focal.MotherID); ok {
		parents = append(parents, mother)
	}
	return parents
}

// findSiblings matches on either recorded parent id, so half-siblings count.
func findSiblings(members []models.Person, focal models.Person) []models.Person {
	var siblings []models.Person
	for _, m := range members {
		if m.ID == focal.ID {
			continue
		}
		sameFather := focal.FatherID != "" && m.FatherID == focal.FatherID
		sameMother := focal.MotherID != "" && m.MotherID == focal.MotherID
		if sameFather || sameMother {
			siblings = append(siblings, m)
		}
	}
	return siblings
}

type spouseEntry struct {
	person models.Person
	union  *models.Union
}

// focalSpouses collects union partners first, then co-parents of the focal
// person's children that no union links. Co-parents are a display-time
// inference only.
func focalSpouses(idx *index, focal models.Person, children []models.Person) []spouseEntry {
	var entries []spouseEntry
	seen := make(map[string]int)

	for _, u := range idx.unionsOfPerson(focal.ID) {
		otherID, _ := u.Other(focal.ID)
		if otherID == focal.ID {
			continue
		}
		spouse, ok := idx.lookup(otherID)
		if !ok {
			continue
		}
		union := u
		if i, dup := seen[otherID]; dup {
			entries[i].union = &union
			continue
		}
		seen[otherID] = len(entries)
		entries = append(entries, spouseEntry{person: spouse, union: &union})
	}

	for _, c := range children {
		otherID := c.OtherParent(focal.ID)
		if otherID == "" || otherID == focal.ID {
			continue
		}
		if _, dup := seen[otherID]; dup {
			continue
		}
		coParent, ok := idx.lookup(otherID)
		if !ok {
			continue
		}
		seen[otherID] = len(entries)
		entries = append(entries, spouseEntry{person: coParent})
	}
	return entries
}

func spouseNodes(idx *index, focal models.Person, children []models.Person) []*TreeNode {
	var nodes []*TreeNode
	for _, e := range focalSpouses(idx, focal, children) {
		node := PersonNode(e.person)
		node.Union = e.union
		nodes = append(nodes, node)
		if e.person.HasParents() {
			nodes = append(nodes, MarkerNode(e.person.ID))
		}
	}
	return nodes
}

func childNodes(idx *index, children []models.Person) []*TreeNode {
	if len(children) == 0 {
		return nil
	}
	nodes := make([]*TreeNode, 0, len(children))
	for _, c := range children {
		node := PersonNode(c)
		if idx.hasChildren(c.ID) || idx.hasUnion(c.ID) {
			node.Children = []*TreeNode{MarkerNode(c.ID)}
		}
		nodes = append(nodes, node)
	}
	return nodes
}
