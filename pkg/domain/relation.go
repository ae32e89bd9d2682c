package domain

import (
	"strings"

	dErrors "kinfolk/pkg/domain-errors"
)

// Relation names how a target person is linked to an origin person.
// Invariant: the value must be one of the supported relations.
//
// Usage: construct via ParseRelation at trust boundaries; direct casting
// bypasses validation.
type Relation string

const (
	RelationFather Relation = "father"
	RelationMother Relation = "mother"
	RelationSpouse Relation = "spouse"
	RelationChild  Relation = "child"
)

var validRelations = map[Relation]bool{
	RelationFather: true,
	RelationMother: true,
	RelationSpouse: true,
	RelationChild:  true,
}

// ParseRelation constructs a Relation from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRelation(s string) (Relation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "relation cannot be empty")
	}
	r := Relation(s)
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid relation %q", s)
	}
	return r, nil
}

func (r Relation) IsValid() bool {
	return validRelations[r]
}

// IsParent reports whether the target becomes a parent of the origin.
func (r Relation) IsParent() bool {
	return r == RelationFather || r == RelationMother
}

func (r Relation) String() string {
	return string(r)
}

// ParentRole is the slot a parent occupies on a child record.
type ParentRole string

const (
	ParentRoleFather ParentRole = "father"
	ParentRoleMother ParentRole = "mother"
)

// ParseParentRole accepts father or mother. Empty input defaults to father.
func ParseParentRole(s string) (ParentRole, error) {
	switch ParentRole(strings.ToLower(strings.TrimSpace(s))) {
	case "", ParentRoleFather:
		return ParentRoleFather, nil
	case ParentRoleMother:
		return ParentRoleMother, nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid parent role %q", s)
}

// Other returns the opposite parent slot.
func (r ParentRole) Other() ParentRole {
	if r == ParentRoleMother {
		return ParentRoleFather
	}
	return ParentRoleMother
}
