package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"kinfolk/internal/family/models"
	"kinfolk/internal/hierarchy"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/platform/strings"
)

// Snapshot loads every person and union. The two lists are fetched
// concurrently and are not read under one transaction, so a concurrent
// write may show up in one list only; builders tolerate dangling ids.
func (s *Service) Snapshot(ctx context.Context) (models.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "family.Snapshot")
	defer span.End()
	start := time.Now()

	var people []models.Person
	var unions []models.Union
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		people, err = s.people.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		unions, err = s.unions.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot load failed")
		return models.Snapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family snapshot")
	}

	snap := models.Snapshot{
		People: strings.DedupeBy(people, func(p models.Person) string { return p.ID }),
		Unions: strings.DedupeBy(unions, func(u models.Union) string { return u.ID }),
	}
	span.SetAttributes(
		attribute.Int("family.people", len(snap.People)),
		attribute.Int("family.unions", len(snap.Unions)),
	)
	if s.metrics != nil {
		s.metrics.ObserveSnapshot(start, len(snap.People))
	}
	return snap, nil
}

// FocalTree builds the three-generation tree around focalID.
func (s *Service) FocalTree(ctx context.Context, focalID string) (*hierarchy.TreeNode, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	_, span := s.tracer.Start(ctx, "family.FocalTree")
	defer span.End()
	span.SetAttributes(attribute.String("family.focal_id", focalID))

	start := time.Now()
	tree := hierarchy.BuildFocal(snap.People, focalID, snap.Unions)
	if tree == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "person not found")
	}
	if s.metrics != nil {
		s.metrics.ObserveBuild("focal", start, tree.Count())
	}
	return tree, nil
}

// Ancestors returns the roots of the stored family, in store order.
func (s *Service) Ancestors(ctx context.Context) ([]models.Person, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	roots := hierarchy.FindAncestors(snap.People, snap.Unions)
	if roots == nil {
		roots = []models.Person{}
	}
	return roots, nil
}
