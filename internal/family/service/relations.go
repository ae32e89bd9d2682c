package service

import (
	"context"
	"errors"

	"kinfolk/internal/audit"
	"kinfolk/internal/family/models"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/domain"
	"kinfolk/pkg/platform/sentinel"
	"kinfolk/pkg/requestcontext"
)

// SetParents replaces both parent ids of a person. Empty ids clear the slot.
// A parent must exist and must not be the person or one of their descendants.
func (s *Service) SetParents(ctx context.Context, id string, req *models.SetParentsRequest) (*models.Person, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var updated *models.Person
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.findPerson(ctx, id, "person"); err != nil {
			return err
		}
		for _, parent := range []struct{ id, role string }{{req.FatherID, "father"}, {req.MotherID, "mother"}} {
			if parent.id == "" {
				continue
			}
			if err := s.checkParent(ctx, id, parent.id, parent.role); err != nil {
				return err
			}
		}
		if err := s.people.SetParents(ctx, id, req.FatherID, req.MotherID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set parents")
		}
		p, err := s.findPerson(ctx, id, "person")
		updated = p
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionParentsSet, id, map[string]string{
		"father_id": req.FatherID,
		"mother_id": req.MotherID,
	})
	return updated, nil
}

// checkParent verifies parentID can be recorded as a parent of childID.
func (s *Service) checkParent(ctx context.Context, childID, parentID, role string) error {
	if parentID == childID {
		return dErrors.New(dErrors.CodeValidation, "a person cannot be their own parent")
	}
	if _, err := s.findPerson(ctx, parentID, role); err != nil {
		return err
	}
	descends, err := s.isDescendant(ctx, childID, parentID)
	if err != nil {
		return err
	}
	if descends {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "%s cannot be a descendant of the person", role)
	}
	return nil
}

// isDescendant walks down from ancestorID looking for id.
func (s *Service) isDescendant(ctx context.Context, ancestorID, id string) (bool, error) {
	visited := map[string]bool{ancestorID: true}
	queue := []string{ancestorID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		children, err := s.people.ListChildren(ctx, current)
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load children")
		}
		for _, c := range children {
			if c.ID == id {
				return true, nil
			}
			if !visited[c.ID] {
				visited[c.ID] = true
				queue = append(queue, c.ID)
			}
		}
	}
	return false, nil
}

// CreateUnion joins two people. A union already joining the pair, in either
// order, is returned instead and created is false.
func (s *Service) CreateUnion(ctx context.Context, req *models.CreateUnionRequest) (union *models.Union, created bool, err error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	unionDate, divorceDate, err := req.Dates()
	if err != nil {
		return nil, false, err
	}
	unionType, err := models.ParseUnionType(req.Type)
	if err != nil {
		return nil, false, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		union, created, err = s.ensureUnion(ctx, req.Person1ID, req.Person2ID, func(u *models.Union) {
			u.Type = unionType
			u.UnionDate, u.DivorceDate = unionDate, divorceDate
		})
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logAudit(ctx, audit.ActionUnionCreated, union.ID, map[string]string{
			"person1_id": union.Person1ID,
			"person2_id": union.Person2ID,
		})
	}
	return union, created, nil
}

// ensureUnion returns the union joining a and b, creating it when missing.
// fill sets attributes on a new union only.
func (s *Service) ensureUnion(ctx context.Context, a, b string, fill func(u *models.Union)) (*models.Union, bool, error) {
	if _, err := s.findPerson(ctx, a, "person1"); err != nil {
		return nil, false, err
	}
	if _, err := s.findPerson(ctx, b, "person2"); err != nil {
		return nil, false, err
	}
	existing, err := s.unions.FindByPair(ctx, a, b)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up union")
	}

	u, err := models.NewUnion(s.newID(), a, b, models.UnionTypeMarriage, requestcontext.Now(ctx))
	if err != nil {
		return nil, false, err
	}
	if fill != nil {
		fill(u)
	}
	if err := s.unions.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race for the pair; hand back the winner.
			existing, findErr := s.unions.FindByPair(ctx, a, b)
			if findErr != nil {
				return nil, false, dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to look up union")
			}
			return existing, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create union")
	}
	if s.metrics != nil {
		s.metrics.IncrementUnionsCreated()
	}
	return u, true, nil
}

func (s *Service) DeleteUnion(ctx context.Context, id string) error {
	if err := s.unions.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "union not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete union")
	}
	s.logAudit(ctx, audit.ActionUnionDeleted, id, nil)
	return nil
}

type linkCommand struct {
	originID      string
	targetID      string
	relation      domain.Relation
	originRole    domain.ParentRole
	otherParentID string
}

// LinkRelation records that the existing target person is the origin's
// father, mother, spouse or child.
func (s *Service) LinkRelation(ctx context.Context, originID string, req *models.LinkRequest) (*models.Detail, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	relation, err := domain.ParseRelation(req.Relation)
	if err != nil {
		return nil, err
	}
	role, err := domain.ParseParentRole(req.OriginRole)
	if err != nil {
		return nil, err
	}
	cmd := linkCommand{
		originID:      originID,
		targetID:      req.TargetID,
		relation:      relation,
		originRole:    role,
		otherParentID: req.OtherParentID,
	}
	if err := s.tx.RunInTx(ctx, func(ctx context.Context) error { return s.link(ctx, cmd) }); err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.ActionRelationLinked, originID, map[string]string{
		"target_id": req.TargetID,
		"relation":  relation.String(),
	})
	return s.Detail(ctx, originID)
}

// link must run inside a unit of work.
func (s *Service) link(ctx context.Context, cmd linkCommand) error {
	if cmd.originID == cmd.targetID {
		return dErrors.New(dErrors.CodeValidation, "a person cannot be linked to themselves")
	}
	origin, err := s.findPerson(ctx, cmd.originID, "origin")
	if err != nil {
		return err
	}
	target, err := s.findPerson(ctx, cmd.targetID, "target")
	if err != nil {
		return err
	}

	switch cmd.relation {
	case domain.RelationFather, domain.RelationMother:
		if err := s.checkParent(ctx, origin.ID, target.ID, cmd.relation.String()); err != nil {
			return err
		}
		father, mother := origin.FatherID, origin.MotherID
		if cmd.relation == domain.RelationFather {
			father = target.ID
		} else {
			mother = target.ID
		}
		if father != "" && father == mother {
			return dErrors.New(dErrors.CodeValidation, "father and mother must differ")
		}
		return s.setParents(ctx, origin.ID, father, mother)

	case domain.RelationSpouse:
		_, _, err := s.ensureUnion(ctx, origin.ID, target.ID, nil)
		return err

	case domain.RelationChild:
		return s.linkChild(ctx, origin, target, cmd)
	}
	return dErrors.Newf(dErrors.CodeValidation, "unsupported relation %q", cmd.relation)
}

// linkChild records origin in the target's originRole slot. The opposite slot
// takes otherParentID, or the origin's first union partner, and is left
// untouched when neither is known.
func (s *Service) linkChild(ctx context.Context, origin, target *models.Person, cmd linkCommand) error {
	if err := s.checkParent(ctx, target.ID, origin.ID, "origin"); err != nil {
		return err
	}
	other := cmd.otherParentID
	if other == "" {
		unions, err := s.unions.ListByPerson(ctx, origin.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load unions")
		}
		for _, u := range unions {
			if partner, ok := u.Other(origin.ID); ok && partner != target.ID {
				other = partner
				break
			}
		}
	}
	if other != "" {
		if err := s.checkParent(ctx, target.ID, other, "other parent"); err != nil {
			return err
		}
	}

	father, mother := target.FatherID, target.MotherID
	if cmd.originRole == domain.ParentRoleMother {
		mother = origin.ID
		if other != "" {
			father = other
		}
	} else {
		father = origin.ID
		if other != "" {
			mother = other
		}
	}
	if father != "" && father == mother {
		return dErrors.New(dErrors.CodeValidation, "father and mother must differ")
	}
	return s.setParents(ctx, target.ID, father, mother)
}

func (s *Service) setParents(ctx context.Context, id, fatherID, motherID string) error {
	if err := s.people.SetParents(ctx, id, fatherID, motherID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set parents")
	}
	return nil
}
