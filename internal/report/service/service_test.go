package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kinfolk/internal/audit"
	famodels "kinfolk/internal/family/models"
	"kinfolk/internal/hierarchy"
	"kinfolk/internal/report/models"
	"kinfolk/internal/report/store/export"
	"kinfolk/internal/sharetoken"
	dErrors "kinfolk/pkg/domain-errors"
	"kinfolk/pkg/platform/sentinel"
	"kinfolk/pkg/requestcontext"
)

type staticFamily struct {
	snap famodels.Snapshot
	err  error
}

func (f *staticFamily) Snapshot(context.Context) (famodels.Snapshot, error) {
	return f.snap, f.err
}

type ReportServiceSuite struct {
	suite.Suite
	ctx       context.Context
	family    *staticFamily
	store     *export.InMemory
	signer    *sharetoken.Signer
	publisher *audit.MemoryPublisher
	service   *Service
}

func TestReportServiceSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceSuite))
}

func (s *ReportServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Now())
	s.family = &staticFamily{snap: famodels.Snapshot{
		People: []famodels.Person{
			{ID: "gp", FullName: "Grandparent", BirthDate: famodels.MustDate("1900-01-01")},
			{ID: "gs", FullName: "Grandspouse"},
			{ID: "parent", FullName: "Parent", FatherID: "gp", MotherID: "gs"},
			{ID: "child", FullName: "Child", FatherID: "parent"},
		},
		Unions: []famodels.Union{{ID: "u1", Person1ID: "gp", Person2ID: "gs", Type: famodels.UnionTypeMarriage}},
	}}
	s.store = export.NewInMemory()
	s.signer = sharetoken.NewSigner("test-key", sharetoken.DefaultIssuer, sharetoken.DefaultAudience)
	s.publisher = audit.NewMemoryPublisher()
	s.service = New(s.family, s.store, s.signer,
		WithAuditPublisher(s.publisher),
		WithShareBaseURL("https://kin.example/"),
		WithTTL(time.Hour),
		WithIDGenerator(func() string { return "export-1" }),
	)
}

type downStore struct{}

func (downStore) Save(context.Context, *models.Export, time.Duration) error {
	return fmt.Errorf("save export: %w", sentinel.ErrUnavailable)
}

func (downStore) Get(context.Context, string) (*models.Export, error) {
	return nil, fmt.Errorf("load export: %w", sentinel.ErrUnavailable)
}

func (s *ReportServiceSuite) requireCode(err error, code dErrors.Code) {
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
}

func (s *ReportServiceSuite) TestExportSingleRoot() {
	res, err := s.service.Export(s.ctx, &models.ExportRequest{RootID: "gp", Format: "outline"})
	s.Require().NoError(err)

	e := res.Export
	s.Equal("export-1", e.ID)
	s.Equal("outline", e.Format)
	s.Equal([]string{"gp"}, e.RootIDs)
	s.Equal(3, e.People)
	s.Equal(ETag(e.Body), e.ETag)
	s.True(strings.HasPrefix(e.ETag, `"`))
	s.Equal(requestcontext.Now(s.ctx).Add(time.Hour), e.ExpiresAt)
	s.Contains(string(e.Body), "Family of Grandparent")
	s.True(strings.HasPrefix(res.ShareURL, "https://kin.example/shared/reports?token="))

	stored, err := s.service.Get(s.ctx, "export-1")
	s.Require().NoError(err)
	s.Equal(e.Body, stored.Body)

	shared, err := s.service.Shared(s.ctx, res.ShareToken)
	s.Require().NoError(err)
	s.Equal("export-1", shared.ID)

	s.Equal([]audit.Action{audit.ActionReportExported, audit.ActionReportShared}, s.publisher.Actions())
}

func (s *ReportServiceSuite) TestExportAllAncestors() {
	res, err := s.service.Export(s.ctx, &models.ExportRequest{AllAncestors: true, Format: "list"})
	s.Require().NoError(err)
	s.Equal([]string{"gp"}, res.Export.RootIDs)
	s.Equal("text/html; charset=utf-8", res.Export.ContentType)
	s.Equal("Family Tree Text Report", res.Export.Title)
}

func (s *ReportServiceSuite) TestBuildDoesNotStore() {
	built, err := s.service.Build(s.ctx, &models.ExportRequest{RootIDs: []string{"parent", "gp"}})
	s.Require().NoError(err)
	s.Equal([]string{"parent", "gp"}, built.RootIDs)
	s.Equal("Family Tree Ancestor Report", built.Document.Title)

	_, err = s.service.Get(s.ctx, "export-1")
	s.requireCode(err, dErrors.CodeNotFound)
}

func (s *ReportServiceSuite) TestRequestErrors() {
	_, err := s.service.Export(s.ctx, &models.ExportRequest{RootID: "ghost"})
	s.requireCode(err, dErrors.CodeNotFound)

	_, err = s.service.Export(s.ctx, &models.ExportRequest{RootID: "gp", Format: "pdf"})
	s.requireCode(err, dErrors.CodeValidation)

	_, err = s.service.Export(s.ctx, &models.ExportRequest{})
	s.requireCode(err, dErrors.CodeValidation)

	s.family.err = errors.New("db down")
	_, err = s.service.Export(s.ctx, &models.ExportRequest{RootID: "gp"})
	s.Error(err)
}

func (s *ReportServiceSuite) TestCycles() {
	s.family.snap = famodels.Snapshot{People: []famodels.Person{
		{ID: "a", FullName: "A", FatherID: "b"},
		{ID: "b", FullName: "B", FatherID: "a"},
	}}

	_, err := s.service.Export(s.ctx, &models.ExportRequest{RootID: "a"})
	s.requireCode(err, dErrors.CodeInvariantViolation)
	var cycle *hierarchy.CyclicAncestryError
	s.ErrorAs(err, &cycle)

	lenient := New(s.family, s.store, s.signer, WithCyclePolicy(hierarchy.CyclePolicySkip))
	res, err := lenient.Export(s.ctx, &models.ExportRequest{RootID: "a", Format: "outline"})
	s.Require().NoError(err)
	s.Equal(2, res.Export.People)
}

func (s *ReportServiceSuite) TestExpiryAndTokens() {
	res, err := s.service.Export(s.ctx, &models.ExportRequest{RootID: "gp"})
	s.Require().NoError(err)

	later := requestcontext.WithTime(context.Background(), requestcontext.Now(s.ctx).Add(2*time.Hour))
	_, err = s.service.Get(later, res.Export.ID)
	s.requireCode(err, dErrors.CodeNotFound)

	_, err = s.service.Shared(s.ctx, res.ShareToken+"x")
	s.requireCode(err, dErrors.CodeUnauthorized)

	other := sharetoken.NewSigner("test-key", sharetoken.DefaultIssuer, sharetoken.DefaultAudience)
	now := time.Now()
	token, err := other.Issue("unknown-export", "visual", now, now.Add(time.Hour))
	s.Require().NoError(err)
	_, err = s.service.Shared(s.ctx, token)
	s.requireCode(err, dErrors.CodeNotFound)
}

func (s *ReportServiceSuite) TestETagIsStable() {
	s.Equal(ETag([]byte("abc")), ETag([]byte("abc")))
	s.NotEqual(ETag([]byte("abc")), ETag([]byte("abd")))
	s.Len(ETag(nil), 34)
}

func (s *ReportServiceSuite) TestStoreUnavailable() {
	svc := New(s.family, downStore{}, s.signer)

	_, err := svc.Export(s.ctx, &models.ExportRequest{RootID: "gp"})
	s.requireCode(err, dErrors.CodeUnavailable)

	_, err = svc.Get(s.ctx, "export-1")
	s.requireCode(err, dErrors.CodeUnavailable)
}
