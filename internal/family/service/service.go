package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"kinfolk/internal/audit"
	"kinfolk/internal/family/metrics"
	"kinfolk/internal/family/models"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/platform/sentinel"
	"kinfolk/pkg/platform/tx"
	"kinfolk/pkg/requestcontext"
)

type PersonStore interface {
	Create(ctx context.Context, p *models.Person) error
	FindByID(ctx context.Context, id string) (*models.Person, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Person, error)
	List(ctx context.Context) ([]models.Person, error)
	ListChildren(ctx context.Context, parentID string) ([]models.Person, error)
	Search(ctx context.Context, query, excludeID string, limit int) ([]models.Person, error)
	Update(ctx context.Context, p *models.Person) error
	SetParents(ctx context.Context, id, fatherID, motherID string) error
	Delete(ctx context.Context, id string) error
}

type UnionStore interface {
	Create(ctx context.Context, u *models.Union) error
	FindByID(ctx context.Context, id string) (*models.Union, error)
	FindByPair(ctx context.Context, a, b string) (*models.Union, error)
	ListByPerson(ctx context.Context, personID string) ([]models.Union, error)
	List(ctx context.Context) ([]models.Union, error)
	Delete(ctx context.Context, id string) error
	DeleteByPerson(ctx context.Context, personID string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event) error
}

// Service owns people, unions and the relationships between them, and
// builds focal trees from consistent snapshots.
type Service struct {
	people         PersonStore
	unions         UnionStore
	tx             tx.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	newID          func() string
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTxRunner sets the unit-of-work boundary. Defaults to an in-process lock.
func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

// WithIDGenerator replaces uuid ids, mostly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func New(people PersonStore, unions UnionStore, opts ...Option) *Service {
	s := &Service{
		people: people,
		unions: unions,
		tx:     tx.NewLockRunner(),
		logger: slog.Default(),
		tracer: otel.Tracer("kinfolk/family"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// findPerson translates a store miss into a coded not-found error naming role.
func (s *Service) findPerson(ctx context.Context, id, role string) (*models.Person, error) {
	if id == "" {
		return nil, dErrors.Newf(dErrors.CodeValidation, "%s id is required", role)
	}
	p, err := s.people.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "%s not found", role)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+role)
	}
	return p, nil
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
