package hierarchy

import (
	"kinfolk/internal/family/models"
)

type personOpt func(*models.Person)

func father(id string) personOpt { return func(p *models.Person) { p.FatherID = id } }
func mother(id string) personOpt { return func(p *models.Person) { p.MotherID = id } }
func born(date string) personOpt { return func(p *models.Person) { p.BirthDate = models.MustDate(date) } }

func person(id string, opts ...personOpt) models.Person {
	p := models.Person{ID: id, FullName: "Person " + id}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func union(id, a, b string) models.Union {
	return models.Union{ID: id, Person1ID: a, Person2ID: b, Type: models.UnionTypeMarriage}
}

func ids(nodes []*TreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Key())
	}
	return out
}

func personIDs(people []models.Person) []string {
	out := make([]string, 0, len(people))
	for _, p := range people {
		out = append(out, p.ID)
	}
	return out
}
