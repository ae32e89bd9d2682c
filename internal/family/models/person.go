package models

import (
	"time"
)

// Person is a read-only snapshot of one family member.
//
// FatherID and MotherID are empty when unknown. A non-empty id that does not
// resolve to a loaded Person is treated as unknown by every consumer.
type Person struct {
	ID          string    `json:"id" yaml:"id"`
	FullName    string    `json:"full_name" yaml:"full_name"`
	BirthDate   *Date     `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	DeathDate   *Date     `json:"death_date,omitempty" yaml:"death_date,omitempty"`
	PortraitURL string    `json:"portrait_url,omitempty" yaml:"portrait_url,omitempty"`
	Bio         string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	FatherID    string    `json:"father_id,omitempty" yaml:"father_id,omitempty"`
	MotherID    string    `json:"mother_id,omitempty" yaml:"mother_id,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// HasParents reports whether any parent id is recorded, resolvable or not.
func (p Person) HasParents() bool {
	return p.FatherID != "" || p.MotherID != ""
}

// IsChildOf reports whether id is recorded as this person's father or mother.
func (p Person) IsChildOf(id string) bool {
	return id != "" && (p.FatherID == id || p.MotherID == id)
}

// OtherParent returns the co-parent of parentID, or "" when unknown.
func (p Person) OtherParent(parentID string) string {
	switch parentID {
	case p.FatherID:
		return p.MotherID
	case p.MotherID:
		return p.FatherID
	}
	return ""
}

// Lifespan renders "birth - death" with Unknown/Present placeholders.
func (p Person) Lifespan() string {
	return FormatDate(p.BirthDate, "Unknown") + " - " + FormatDate(p.DeathDate, "Present")
}

// Detail is a person with its immediate relatives resolved.
type Detail struct {
	Person   Person   `json:"person"`
	Father   *Person  `json:"father,omitempty"`
	Mother   *Person  `json:"mother,omitempty"`
	Spouses  []Person `json:"spouses"`
	Children []Person `json:"children"`
}
