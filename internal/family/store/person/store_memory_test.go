package person

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kinfolk/internal/family/models"
	"kinfolk/pkg/platform/sentinel"
)

type PersonStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *PersonStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestPersonStoreSuite(t *testing.T) {
	suite.Run(t, new(PersonStoreSuite))
}

func (s *PersonStoreSuite) add(id, name string) *models.Person {
	p := &models.Person{ID: id, FullName: name, CreatedAt: time.Now()}
	s.Require().NoError(s.store.Create(s.ctx, p))
	return p
}

func (s *PersonStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds by id", func() {
		s.add("a", "Ada")
		found, err := s.store.FindByID(s.ctx, "a")
		s.Require().NoError(err)
		s.Equal("Ada", found.FullName)
	})

	s.Run("rejects duplicate id", func() {
		err := s.store.Create(s.ctx, &models.Person{ID: "a", FullName: "Other"})
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PersonStoreSuite) TestListKeepsInsertionOrder() {
	s.add("c", "Cy")
	s.add("a", "Ada")
	s.add("b", "Bo")

	people, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(people, 3)
	s.Equal("c", people[0].ID)
	s.Equal("a", people[1].ID)
	s.Equal("b", people[2].ID)

	subset, err := s.store.FindByIDs(s.ctx, []string{"b", "c", "ghost"})
	s.Require().NoError(err)
	s.Require().Len(subset, 2)
	s.Equal("c", subset[0].ID)
	s.Equal("b", subset[1].ID)
}

func (s *PersonStoreSuite) TestSearch() {
	s.add("1", "Margaret Smith")
	s.add("2", "John SMITH")
	s.add("3", "Anna Jones")
	s.add("4", "Adam Smithson")

	s.Run("matches case-insensitive substring ordered by name", func() {
		found, err := s.store.Search(s.ctx, "smith", "", 10)
		s.Require().NoError(err)
		s.Require().Len(found, 3)
		s.Equal("Adam Smithson", found[0].FullName)
		s.Equal("John SMITH", found[1].FullName)
		s.Equal("Margaret Smith", found[2].FullName)
	})

	s.Run("excludes the origin person", func() {
		found, err := s.store.Search(s.ctx, "smith", "2", 10)
		s.Require().NoError(err)
		s.Len(found, 2)
	})

	s.Run("applies limit", func() {
		found, err := s.store.Search(s.ctx, "", "", 2)
		s.Require().NoError(err)
		s.Len(found, 2)
	})
}

func (s *PersonStoreSuite) TestParentsAndChildren() {
	s.add("f", "Father")
	s.add("m", "Mother")
	s.add("c", "Child")

	s.Require().NoError(s.store.SetParents(s.ctx, "c", "f", "m"))

	children, err := s.store.ListChildren(s.ctx, "m")
	s.Require().NoError(err)
	s.Require().Len(children, 1)
	s.Equal("c", children[0].ID)

	s.ErrorIs(s.store.SetParents(s.ctx, "ghost", "f", ""), sentinel.ErrNotFound)
}

func (s *PersonStoreSuite) TestDeleteClearsParentReferences() {
	s.add("f", "Father")
	s.add("c", "Child")
	s.Require().NoError(s.store.SetParents(s.ctx, "c", "f", "f"))

	s.Require().NoError(s.store.Delete(s.ctx, "f"))

	child, err := s.store.FindByID(s.ctx, "c")
	s.Require().NoError(err)
	s.Empty(child.FatherID)
	s.Empty(child.MotherID)

	people, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(people, 1)

	s.ErrorIs(s.store.Delete(s.ctx, "f"), sentinel.ErrNotFound)
}

func (s *PersonStoreSuite) TestUpdate() {
	p := s.add("a", "Ada")
	p.FullName = "Ada King"
	p.Bio = "Mathematician"
	s.Require().NoError(s.store.Update(s.ctx, p))

	found, err := s.store.FindByID(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal("Ada King", found.FullName)
	s.Equal("Mathematician", found.Bio)

	s.ErrorIs(s.store.Update(s.ctx, &models.Person{ID: "ghost"}), sentinel.ErrNotFound)
}
