package models

import (
	"time"

	dErrors "kinfolk/pkg/domain-errors"
)

// UnionType tags the kind of spousal relationship.
type UnionType string

const (
	UnionTypeMarriage    UnionType = "marriage"
	UnionTypePartnership UnionType = "partnership"
	UnionTypeOther       UnionType = "other"
)

var validUnionTypes = map[UnionType]bool{
	UnionTypeMarriage:    true,
	UnionTypePartnership: true,
	UnionTypeOther:       true,
}

// ParseUnionType defaults an empty value to marriage.
func ParseUnionType(s string) (UnionType, error) {
	if s == "" {
		return UnionTypeMarriage, nil
	}
	t := UnionType(s)
	if !validUnionTypes[t] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid union type: "+s)
	}
	return t, nil
}

// Union is a symmetric spouse relationship between Person1ID and Person2ID.
type Union struct {
	ID          string    `json:"id" yaml:"id"`
	Person1ID   string    `json:"person1_id" yaml:"person1_id"`
	Person2ID   string    `json:"person2_id" yaml:"person2_id"`
	UnionDate   *Date     `json:"union_date,omitempty" yaml:"union_date,omitempty"`
	DivorceDate *Date     `json:"divorce_date,omitempty" yaml:"divorce_date,omitempty"`
	Type        UnionType `json:"type" yaml:"type"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// Involves reports whether id is either party.
func (u Union) Involves(id string) bool {
	return id != "" && (u.Person1ID == id || u.Person2ID == id)
}

// Other returns the party opposite id.
func (u Union) Other(id string) (string, bool) {
	switch id {
	case "":
		return "", false
	case u.Person1ID:
		return u.Person2ID, true
	case u.Person2ID:
		return u.Person1ID, true
	}
	return "", false
}

// Joins reports whether the union links a and b, in either order.
func (u Union) Joins(a, b string) bool {
	return (u.Person1ID == a && u.Person2ID == b) || (u.Person1ID == b && u.Person2ID == a)
}

// NewUnion validates the pair and builds a union.
func NewUnion(id, person1ID, person2ID string, unionType UnionType, now time.Time) (*Union, error) {
	if person1ID == "" || person2ID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "union requires two people")
	}
	if person1ID == person2ID {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a person cannot be in a union with themselves")
	}
	if unionType == "" {
		unionType = UnionTypeMarriage
	}
	return &Union{
		ID:        id,
		Person1ID: person1ID,
		Person2ID: person2ID,
		Type:      unionType,
		CreatedAt: now,
	}, nil
}
