package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kinfolk/internal/audit"
	"kinfolk/internal/family/models"
	"kinfolk/internal/family/store/person"
	"kinfolk/internal/family/store/union"
	"kinfolk/internal/hierarchy"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	people    *person.InMemory
	unions    *union.InMemory
	publisher *audit.MemoryPublisher
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	s.people = person.NewInMemory()
	s.unions = union.NewInMemory()
	s.publisher = audit.NewMemoryPublisher()
	n := 0
	s.service = New(s.people, s.unions,
		WithAuditPublisher(s.publisher),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func (s *ServiceSuite) create(name string) *models.Person {
	p, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{FullName: name})
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) requireCode(err error, code dErrors.Code) {
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}

func (s *ServiceSuite) TestCreatePerson() {
	s.Run("stores a trimmed person with request time", func() {
		p, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{
			FullName:  "  Ada Lovelace ",
			BirthDate: "1815-12-10",
			DeathDate: "1852-11-27",
		})
		s.Require().NoError(err)
		s.Equal("Ada Lovelace", p.FullName)
		s.Equal("1815-12-10", p.BirthDate.String())
		s.Equal(requestcontext.Now(s.ctx), p.CreatedAt)

		stored, err := s.people.FindByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(p.FullName, stored.FullName)
		s.Contains(s.publisher.Actions(), audit.ActionPersonCreated)
	})

	s.Run("rejects a missing name", func() {
		_, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{FullName: "  "})
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("rejects an unknown parent", func() {
		_, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{FullName: "Orphan", FatherID: "ghost"})
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("links to an origin as its child", func() {
		parent := s.create("Parent")
		partner := s.create("Partner")
		_, _, err := s.service.CreateUnion(s.ctx, &models.CreateUnionRequest{Person1ID: parent.ID, Person2ID: partner.ID})
		s.Require().NoError(err)

		child, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{
			FullName: "Kid",
			OriginID: parent.ID,
			Relation: "child",
		})
		s.Require().NoError(err)
		s.Equal(parent.ID, child.FatherID)
		s.Equal(partner.ID, child.MotherID)
	})

	s.Run("unknown origin creates nothing", func() {
		before, err := s.people.List(s.ctx)
		s.Require().NoError(err)
		_, err = s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{
			FullName: "Nobody",
			OriginID: "ghost",
			Relation: "spouse",
		})
		s.requireCode(err, dErrors.CodeNotFound)
		after, err := s.people.List(s.ctx)
		s.Require().NoError(err)
		s.Len(after, len(before))
	})
}

func (s *ServiceSuite) TestDetail() {
	father := s.create("Father")
	mother := s.create("Mother")
	focal := s.create("Focal")
	spouse := s.create("Spouse")
	_, err := s.service.SetParents(s.ctx, focal.ID, &models.SetParentsRequest{FatherID: father.ID, MotherID: mother.ID})
	s.Require().NoError(err)
	_, _, err = s.service.CreateUnion(s.ctx, &models.CreateUnionRequest{Person1ID: spouse.ID, Person2ID: focal.ID})
	s.Require().NoError(err)

	younger, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{FullName: "Younger", BirthDate: "2000-01-01", FatherID: focal.ID})
	s.Require().NoError(err)
	older, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{FullName: "Older", BirthDate: "1990-01-01", FatherID: focal.ID})
	s.Require().NoError(err)

	detail, err := s.service.Detail(s.ctx, focal.ID)
	s.Require().NoError(err)
	s.Require().NotNil(detail.Father)
	s.Require().NotNil(detail.Mother)
	s.Equal(father.ID, detail.Father.ID)
	s.Equal(mother.ID, detail.Mother.ID)
	s.Require().Len(detail.Spouses, 1)
	s.Equal(spouse.ID, detail.Spouses[0].ID)
	s.Require().Len(detail.Children, 2)
	s.Equal(older.ID, detail.Children[0].ID)
	s.Equal(younger.ID, detail.Children[1].ID)

	_, err = s.service.Detail(s.ctx, "ghost")
	s.requireCode(err, dErrors.CodeNotFound)
}

func (s *ServiceSuite) TestSearch() {
	for _, name := range []string{"Anna Smith", "Hannah Jones", "Bob Smith"} {
		s.create(name)
	}
	results, err := s.service.Search(s.ctx, "ANN", "", 0)
	s.Require().NoError(err)
	s.Len(results, 2)

	results, err = s.service.Search(s.ctx, "smith", "", 1)
	s.Require().NoError(err)
	s.Len(results, 1)

	results, err = s.service.Search(s.ctx, "nobody", "", 500)
	s.Require().NoError(err)
	s.NotNil(results)
	s.Empty(results)
}

func (s *ServiceSuite) TestUpdateAndDelete() {
	parent := s.create("Parent")
	spouse := s.create("Spouse")
	child, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{FullName: "Child", MotherID: parent.ID})
	s.Require().NoError(err)
	_, _, err = s.service.CreateUnion(s.ctx, &models.CreateUnionRequest{Person1ID: parent.ID, Person2ID: spouse.ID})
	s.Require().NoError(err)

	s.Run("patches only given fields", func() {
		name := "Renamed"
		bio := "A short bio"
		updated, err := s.service.UpdatePerson(s.ctx, parent.ID, &models.UpdatePersonRequest{FullName: &name, Bio: &bio})
		s.Require().NoError(err)
		s.Equal("Renamed", updated.FullName)
		s.Equal("A short bio", updated.Bio)
	})

	s.Run("rejects an inverted lifespan", func() {
		birth, death := "2000-01-01", "1999-01-01"
		_, err := s.service.UpdatePerson(s.ctx, parent.ID, &models.UpdatePersonRequest{BirthDate: &birth, DeathDate: &death})
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("delete clears children and unions", func() {
		s.Require().NoError(s.service.DeletePerson(s.ctx, parent.ID))

		kid, err := s.people.FindByID(s.ctx, child.ID)
		s.Require().NoError(err)
		s.Empty(kid.MotherID)
		unions, err := s.unions.ListByPerson(s.ctx, spouse.ID)
		s.Require().NoError(err)
		s.Empty(unions)

		s.requireCode(s.service.DeletePerson(s.ctx, parent.ID), dErrors.CodeNotFound)
	})
}

func (s *ServiceSuite) TestSetParents() {
	grandparent := s.create("Grandparent")
	parent := s.create("Parent")
	child := s.create("Child")
	_, err := s.service.SetParents(s.ctx, parent.ID, &models.SetParentsRequest{FatherID: grandparent.ID})
	s.Require().NoError(err)
	_, err = s.service.SetParents(s.ctx, child.ID, &models.SetParentsRequest{MotherID: parent.ID})
	s.Require().NoError(err)

	s.Run("a person cannot be their own parent", func() {
		_, err := s.service.SetParents(s.ctx, child.ID, &models.SetParentsRequest{FatherID: child.ID})
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("a descendant cannot become a parent", func() {
		_, err := s.service.SetParents(s.ctx, grandparent.ID, &models.SetParentsRequest{FatherID: child.ID})
		s.requireCode(err, dErrors.CodeInvariantViolation)
	})

	s.Run("unknown parent is not found", func() {
		_, err := s.service.SetParents(s.ctx, child.ID, &models.SetParentsRequest{FatherID: "ghost"})
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("empty ids clear both slots", func() {
		p, err := s.service.SetParents(s.ctx, child.ID, &models.SetParentsRequest{})
		s.Require().NoError(err)
		s.False(p.HasParents())
	})
}

func (s *ServiceSuite) TestCreateUnion() {
	a := s.create("A")
	b := s.create("B")

	first, created, err := s.service.CreateUnion(s.ctx, &models.CreateUnionRequest{
		Person1ID: a.ID,
		Person2ID: b.ID,
		UnionDate: "1990-06-01",
		Type:      "partnership",
	})
	s.Require().NoError(err)
	s.True(created)
	s.Equal(models.UnionTypePartnership, first.Type)
	s.Equal("1990-06-01", first.UnionDate.String())

	again, created, err := s.service.CreateUnion(s.ctx, &models.CreateUnionRequest{Person1ID: b.ID, Person2ID: a.ID})
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, again.ID)

	all, err := s.unions.List(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)

	_, _, err = s.service.CreateUnion(s.ctx, &models.CreateUnionRequest{Person1ID: a.ID, Person2ID: "ghost"})
	s.requireCode(err, dErrors.CodeNotFound)

	_, _, err = s.service.CreateUnion(s.ctx, &models.CreateUnionRequest{Person1ID: a.ID, Person2ID: a.ID})
	s.requireCode(err, dErrors.CodeValidation)

	s.Require().NoError(s.service.DeleteUnion(s.ctx, first.ID))
	s.requireCode(s.service.DeleteUnion(s.ctx, first.ID), dErrors.CodeNotFound)
}

func (s *ServiceSuite) TestLinkRelation() {
	origin := s.create("Origin")
	dad := s.create("Dad")
	partner := s.create("Partner")
	kid := s.create("Kid")

	s.Run("father sets the origin's father", func() {
		detail, err := s.service.LinkRelation(s.ctx, origin.ID, &models.LinkRequest{TargetID: dad.ID, Relation: "father"})
		s.Require().NoError(err)
		s.Require().NotNil(detail.Father)
		s.Equal(dad.ID, detail.Father.ID)
	})

	s.Run("spouse is idempotent", func() {
		_, err := s.service.LinkRelation(s.ctx, origin.ID, &models.LinkRequest{TargetID: partner.ID, Relation: "spouse"})
		s.Require().NoError(err)
		detail, err := s.service.LinkRelation(s.ctx, partner.ID, &models.LinkRequest{TargetID: origin.ID, Relation: "spouse"})
		s.Require().NoError(err)
		s.Len(detail.Spouses, 1)
	})

	s.Run("child takes the partner as other parent", func() {
		_, err := s.service.LinkRelation(s.ctx, origin.ID, &models.LinkRequest{TargetID: kid.ID, Relation: "child", OriginRole: "mother"})
		s.Require().NoError(err)
		stored, err := s.people.FindByID(s.ctx, kid.ID)
		s.Require().NoError(err)
		s.Equal(origin.ID, stored.MotherID)
		s.Equal(partner.ID, stored.FatherID)
	})

	s.Run("self link is rejected", func() {
		_, err := s.service.LinkRelation(s.ctx, origin.ID, &models.LinkRequest{TargetID: origin.ID, Relation: "spouse"})
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("an ancestor cannot be linked as a child", func() {
		_, err := s.service.LinkRelation(s.ctx, origin.ID, &models.LinkRequest{TargetID: dad.ID, Relation: "child"})
		s.requireCode(err, dErrors.CodeInvariantViolation)
	})

	s.Run("unknown relation is a validation error", func() {
		_, err := s.service.LinkRelation(s.ctx, origin.ID, &models.LinkRequest{TargetID: dad.ID, Relation: "cousin"})
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Contains(s.publisher.Actions(), audit.ActionRelationLinked)
}

func (s *ServiceSuite) TestTrees() {
	gp := s.create("Grandparent")
	parent, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{FullName: "Parent", FatherID: gp.ID})
	s.Require().NoError(err)
	focal, err := s.service.CreatePerson(s.ctx, &models.CreatePersonRequest{FullName: "Focal", FatherID: parent.ID})
	s.Require().NoError(err)

	s.Run("focal tree hangs under a virtual root when parents have parents", func() {
		tree, err := s.service.FocalTree(s.ctx, focal.ID)
		s.Require().NoError(err)
		s.Equal(hierarchy.KindVirtualRoot, tree.Kind)
		s.Require().Len(tree.Children, 1)
		s.Equal(parent.ID, tree.Children[0].ID())
	})

	s.Run("unknown focal is not found", func() {
		_, err := s.service.FocalTree(s.ctx, "ghost")
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("ancestors are members without parents", func() {
		roots, err := s.service.Ancestors(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(roots, 1)
		s.Equal(gp.ID, roots[0].ID)
	})

	s.Run("snapshot holds everyone", func() {
		snap, err := s.service.Snapshot(s.ctx)
		s.Require().NoError(err)
		s.Len(snap.People, 3)
		s.Empty(snap.Unions)
	})
}
