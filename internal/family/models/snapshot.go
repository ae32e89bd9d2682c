package models

// Snapshot is the full member and union set handed to the builders.
// People are unique by id and keep store order.
type Snapshot struct {
	People []Person
	Unions []Union
}

// Find returns the person with id from the snapshot.
func (s Snapshot) Find(id string) (Person, bool) {
	for _, p := range s.People {
		if p.ID == id {
			return p, true
		}
	}
	return Person{}, false
}
