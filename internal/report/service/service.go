package service

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/blake2b"

	"kinfolk/internal/audit"
	famodels "kinfolk/internal/family/models"
	"kinfolk/internal/hierarchy"
	"kinfolk/internal/report"
	"kinfolk/internal/report/metrics"
	"kinfolk/internal/report/models"
	"kinfolk/internal/sharetoken"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/platform/sentinel"
	"kinfolk/pkg/requestcontext"
)

const DefaultTTL = 24 * time.Hour

// FamilySource supplies the member and union snapshot reports are built from.
type FamilySource interface {
	Snapshot(ctx context.Context) (famodels.Snapshot, error)
}

type ExportStore interface {
	Save(ctx context.Context, e *models.Export, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Export, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event) error
}

// Service builds descendant reports, keeps them for a limited time and hands
// out signed share links to them.
type Service struct {
	family         FamilySource
	store          ExportStore
	signer         *sharetoken.Signer
	renderer       *report.Renderer
	ttl            time.Duration
	shareBaseURL   string
	cyclePolicy    hierarchy.CyclePolicy
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	newID          func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

// WithTTL sets how long exports and their share links stay valid.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithShareBaseURL(base string) Option {
	return func(s *Service) { s.shareBaseURL = strings.TrimRight(base, "/") }
}

// WithCyclePolicy chooses between refusing and pruning cyclic parent links.
func WithCyclePolicy(p hierarchy.CyclePolicy) Option {
	return func(s *Service) { s.cyclePolicy = p }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func New(family FamilySource, store ExportStore, signer *sharetoken.Signer, opts ...Option) *Service {
	s := &Service{
		family:      family,
		store:       store,
		signer:      signer,
		renderer:    report.NewRenderer(),
		ttl:         DefaultTTL,
		cyclePolicy: hierarchy.CyclePolicyFail,
		logger:      slog.Default(),
		tracer:      otel.Tracer("kinfolk/report"),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Built is a rendered report before it is stored.
type Built struct {
	Document report.Document
	RootIDs  []string
	People   int
}

// Build renders the requested report without storing it.
func (s *Service) Build(ctx context.Context, req *models.ExportRequest) (*Built, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	snap, err := s.family.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "report.Build")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.format", string(format)),
		attribute.Bool("report.all_ancestors", req.AllAncestors),
	)

	roots, err := s.resolveRoots(snap, req)
	if err != nil {
		return nil, err
	}
	builder := hierarchy.NewDeepBuilder(
		hierarchy.WithCyclePolicy(s.cyclePolicy),
		hierarchy.WithSkipHook(func(parentID, childID string) {
			s.logger.WarnContext(ctx, "skipped cyclic parent link",
				"request_id", requestcontext.RequestID(ctx),
				"parent_id", parentID,
				"child_id", childID,
			)
		}),
	)
	trees, err := builder.BuildAll(roots, snap.People, snap.Unions)
	if err != nil {
		var cycle *hierarchy.CyclicAncestryError
		if errors.As(err, &cycle) {
			if s.metrics != nil {
				s.metrics.IncrementCyclesDetected()
			}
			span.RecordError(err)
			return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation,
				"family contains a cyclic parent link at "+cycle.PersonID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build report")
	}

	doc, err := s.renderer.Render(format, trees)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render report")
	}

	people := 0
	rootIDs := make([]string, 0, len(roots))
	for i, t := range trees {
		people += t.Size()
		rootIDs = append(rootIDs, roots[i].ID)
	}
	span.SetAttributes(attribute.Int("report.people", people))
	return &Built{Document: doc, RootIDs: rootIDs, People: people}, nil
}

// resolveRoots picks every ancestor, or the requested roots in request order.
func (s *Service) resolveRoots(snap famodels.Snapshot, req *models.ExportRequest) ([]famodels.Person, error) {
	if req.AllAncestors {
		return hierarchy.FindAncestors(snap.People, snap.Unions), nil
	}
	roots := make([]famodels.Person, 0, len(req.RootIDs))
	for _, id := range req.RootIDs {
		p, ok := snap.Find(id)
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "person %s not found", id)
		}
		roots = append(roots, p)
	}
	return roots, nil
}

// ExportResult is a stored export and the link that shares it.
type ExportResult struct {
	Export     *models.Export
	ShareToken string
	ShareURL   string
}

// Export builds, stores and signs a report.
func (s *Service) Export(ctx context.Context, req *models.ExportRequest) (*ExportResult, error) {
	start := time.Now()
	built, err := s.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	e := &models.Export{
		ID:          s.newID(),
		Format:      string(built.Document.Format),
		Title:       built.Document.Title,
		ContentType: built.Document.ContentType,
		ETag:        ETag(built.Document.Body),
		RootIDs:     built.RootIDs,
		People:      built.People,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
		Body:        built.Document.Body,
	}
	if err := s.store.Save(ctx, e, s.ttl); err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "export store unavailable")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store export")
	}
	token, err := s.signer.Issue(e.ID, e.Format, now, e.ExpiresAt)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign share link")
	}

	if s.metrics != nil {
		s.metrics.ObserveExport(e.Format, start, len(e.Body))
	}
	s.logAudit(ctx, audit.ActionReportExported, e.ID, map[string]string{
		"format": e.Format,
		"roots":  strconv.Itoa(len(e.RootIDs)),
		"people": strconv.Itoa(e.People),
	})
	return &ExportResult{
		Export:     e,
		ShareToken: token,
		ShareURL:   s.shareBaseURL + "/shared/reports?token=" + url.QueryEscape(token),
	}, nil
}

// Get returns a stored export that has not expired.
func (s *Service) Get(ctx context.Context, id string) (*models.Export, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "export not found or expired")
		}
		if errors.Is(err, sentinel.ErrUnavailable) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "export store unavailable")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load export")
	}
	if e.Expired(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeNotFound, "export not found or expired")
	}
	return e, nil
}

// Shared resolves a share token to its export.
func (s *Service) Shared(ctx context.Context, token string) (*models.Export, error) {
	claims, err := s.signer.Validate(token)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementRejectedShareTokens()
		}
		return nil, err
	}
	e, err := s.Get(ctx, claims.ExportID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementSharedDownloads()
	}
	s.logAudit(ctx, audit.ActionReportShared, e.ID, map[string]string{"format": e.Format})
	return e, nil
}

// ETag is a strong validator derived from a BLAKE2b-256 digest of body.
func ETag(body []byte) string {
	sum := blake2b.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, subject string, details map[string]string) {
	args := []any{"event", string(action), "log_type", "audit", "subject", subject}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		args = append(args, "request_id", requestID)
	}
	for k, v := range details {
		args = append(args, k, v)
	}
	s.logger.InfoContext(ctx, string(action), args...)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{Action: action, Subject: subject, Details: details}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(action), "error", err)
	}
}
