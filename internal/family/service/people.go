package service

import (
	"context"
	"errors"

	"kinfolk/internal/audit"
	"kinfolk/internal/family/models"
	"kinfolk/internal/hierarchy"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/domain"
	"kinfolk/pkg/platform/sentinel"
	"kinfolk/pkg/requestcontext"
)

const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

// CreatePerson stores a new person. When the request names an origin and a
// relation, the person is linked to the origin in the same unit of work.
func (s *Service) CreatePerson(ctx context.Context, req *models.CreatePersonRequest) (*models.Person, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	birth, death, err := models.ParseLifespan(req.BirthDate, req.DeathDate)
	if err != nil {
		return nil, err
	}

	p := &models.Person{
		ID:          s.newID(),
		FullName:    req.FullName,
		BirthDate:   birth,
		DeathDate:   death,
		PortraitURL: req.PortraitURL,
		Bio:         req.Bio,
		FatherID:    req.FatherID,
		MotherID:    req.MotherID,
		CreatedAt:   requestcontext.Now(ctx),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, parent := range []struct{ id, role string }{{p.FatherID, "father"}, {p.MotherID, "mother"}} {
			if parent.id == "" {
				continue
			}
			if _, err := s.findPerson(ctx, parent.id, parent.role); err != nil {
				return err
			}
		}
		if req.OriginID != "" {
			if _, err := s.findPerson(ctx, req.OriginID, "origin"); err != nil {
				return err
			}
		}
		if err := s.people.Create(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "person already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create person")
		}
		if req.OriginID == "" {
			return nil
		}
		relation, err := domain.ParseRelation(req.Relation)
		if err != nil {
			return err
		}
		role, err := domain.ParseParentRole(req.OriginRole)
		if err != nil {
			return err
		}
		return s.link(ctx, linkCommand{
			originID:      req.OriginID,
			targetID:      p.ID,
			relation:      relation,
			originRole:    role,
			otherParentID: req.OtherParentID,
		})
	})
	if err != nil {
		return nil, err
	}

	// Linking may have set parent ids on the new person.
	if created, err := s.people.FindByID(ctx, p.ID); err == nil {
		p = created
	}
	if s.metrics != nil {
		s.metrics.IncrementPeopleCreated()
	}
	s.logAudit(ctx, audit.ActionPersonCreated, p.ID, linkDetails(req))
	return p, nil
}

func linkDetails(req *models.CreatePersonRequest) map[string]string {
	if req.OriginID == "" {
		return nil
	}
	return map[string]string{"origin_id": req.OriginID, "relation": req.Relation}
}

func (s *Service) GetPerson(ctx context.Context, id string) (*models.Person, error) {
	return s.findPerson(ctx, id, "person")
}

// Detail resolves the person's parents, union partners (in union order) and
// children (in birth order). Dangling parent ids resolve to nothing.
func (s *Service) Detail(ctx context.Context, id string) (*models.Detail, error) {
	p, err := s.findPerson(ctx, id, "person")
	if err != nil {
		return nil, err
	}
	detail := &models.Detail{Person: *p, Spouses: []models.Person{}, Children: []models.Person{}}

	parents, err := s.people.FindByIDs(ctx, nonEmpty(p.FatherID, p.MotherID))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load parents")
	}
	for i := range parents {
		switch parents[i].ID {
		case p.FatherID:
			detail.Father = &parents[i]
		case p.MotherID:
			detail.Mother = &parents[i]
		}
	}

	unions, err := s.unions.ListByPerson(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load unions")
	}
	partnerIDs := make([]string, 0, len(unions))
	for _, u := range unions {
		if other, ok := u.Other(id); ok {
			partnerIDs = append(partnerIDs, other)
		}
	}
	partners, err := s.people.FindByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load spouses")
	}
	byID := make(map[string]models.Person, len(partners))
	for _, partner := range partners {
		byID[partner.ID] = partner
	}
	for _, pid := range partnerIDs {
		if partner, ok := byID[pid]; ok {
			detail.Spouses = append(detail.Spouses, partner)
		}
	}

	children, err := s.people.ListChildren(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load children")
	}
	detail.Children = append(detail.Children, hierarchy.SortByBirth(children)...)
	return detail, nil
}

// Search matches names case-insensitively. limit defaults to 10 and is
// capped at 50.
func (s *Service) Search(ctx context.Context, query, excludeID string, limit int) ([]models.Person, error) {
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	people, err := s.people.Search(ctx, query, excludeID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search people")
	}
	if people == nil {
		people = []models.Person{}
	}
	return people, nil
}

func (s *Service) UpdatePerson(ctx context.Context, id string, req *models.UpdatePersonRequest) (*models.Person, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var updated *models.Person
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, err := s.findPerson(ctx, id, "person")
		if err != nil {
			return err
		}
		if err := req.Apply(p); err != nil {
			return err
		}
		if err := s.people.Update(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "person not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update person")
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionPersonUpdated, id, nil)
	return updated, nil
}

// DeletePerson removes the person and their unions and clears parent ids
// on their children.
func (s *Service) DeletePerson(ctx context.Context, id string) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.findPerson(ctx, id, "person"); err != nil {
			return err
		}
		if err := s.unions.DeleteByPerson(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete unions")
		}
		if err := s.people.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete person")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionPersonDeleted, id, nil)
	return nil
}

func nonEmpty(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
