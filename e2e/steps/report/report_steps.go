package report

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context the report steps use.
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	Follow(raw string) error
	Status() int
	Body() []byte
	Header(key string) string
	StringField(path string) (string, error)
	ID(alias string) (string, error)
}

// RegisterSteps registers export, download and share link steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reportSteps{tc: tc}

	ctx.Step(`^I export a "([^"]*)" report rooted at "([^"]*)"$`, steps.exportRooted)
	ctx.Step(`^I export a "([^"]*)" report of all ancestors$`, steps.exportAllAncestors)
	ctx.Step(`^I download the export$`, steps.download)
	ctx.Step(`^I download the export again with its ETag$`, steps.downloadWithETag)
	ctx.Step(`^I open the share link$`, steps.openShareLink)
	ctx.Step(`^I open a share link with token "([^"]*)"$`, steps.openShareToken)
	ctx.Step(`^the response content type should start with "([^"]*)"$`, steps.contentTypeShouldStartWith)
}

type reportSteps struct {
	tc TestContext

	downloadURL string
	shareURL    string
	etag        string
}

func (s *reportSteps) exportRooted(ctx context.Context, format, root string) error {
	id, err := s.tc.ID(root)
	if err != nil {
		return err
	}
	return s.export(map[string]any{"format": format, "root_id": id})
}

func (s *reportSteps) exportAllAncestors(ctx context.Context, format string) error {
	return s.export(map[string]any{"format": format, "all_ancestors": true})
}

func (s *reportSteps) export(body map[string]any) error {
	if err := s.tc.POST("/reports", body); err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return nil
	}
	var err error
	if s.downloadURL, err = s.tc.StringField("download_url"); err != nil {
		return err
	}
	if s.shareURL, err = s.tc.StringField("share_url"); err != nil {
		return err
	}
	s.etag, err = s.tc.StringField("etag")
	return err
}

func (s *reportSteps) download(ctx context.Context) error {
	if s.downloadURL == "" {
		return fmt.Errorf("no export has been created in this scenario")
	}
	return s.tc.GET(s.downloadURL, nil)
}

func (s *reportSteps) downloadWithETag(ctx context.Context) error {
	if s.downloadURL == "" {
		return fmt.Errorf("no export has been created in this scenario")
	}
	return s.tc.GET(s.downloadURL, map[string]string{"If-None-Match": s.etag})
}

func (s *reportSteps) openShareLink(ctx context.Context) error {
	if s.shareURL == "" {
		return fmt.Errorf("no export has been created in this scenario")
	}
	return s.tc.Follow(s.shareURL)
}

func (s *reportSteps) openShareToken(ctx context.Context, token string) error {
	return s.tc.GET("/shared/reports?token="+token, nil)
}

func (s *reportSteps) contentTypeShouldStartWith(ctx context.Context, prefix string) error {
	got := s.tc.Header("Content-Type")
	if len(got) < len(prefix) || got[:len(prefix)] != prefix {
		return fmt.Errorf("expected content type %q, got %q", prefix, got)
	}
	return nil
}
