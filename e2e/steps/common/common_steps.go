package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context the generic steps use.
type TestContext interface {
	GET(path string, headers map[string]string) error
	DELETE(path string) error
	Status() int
	Body() []byte
	Field(path string) (any, error)
	StringField(path string) (string, error)
	ID(alias string) (string, error)
}

// RegisterSteps registers background, request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the kinfolk server is running$`, steps.serverIsRunning)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^I DELETE "([^"]*)"$`, steps.delete)

	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should be the id of "([^"]*)"$`, steps.fieldShouldBeID)
	ctx.Step(`^the response field "([^"]*)" should have (\d+) items?$`, steps.fieldShouldHaveItems)
	ctx.Step(`^the response body should contain "([^"]*)"$`, steps.bodyShouldContain)
	ctx.Step(`^the response body should not contain "([^"]*)"$`, steps.bodyShouldNotContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serverIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health", nil); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("health check returned %d: %s", s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) delete(ctx context.Context, path string) error {
	return s.tc.DELETE(path)
}

func (s *commonSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.Status(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.Body())
	}
	return nil
}

func (s *commonSteps) fieldShouldEqual(ctx context.Context, path, want string) error {
	v, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("field %q: expected %q, got %q", path, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldBeID(ctx context.Context, path, alias string) error {
	want, err := s.tc.ID(alias)
	if err != nil {
		return err
	}
	got, err := s.tc.StringField(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("field %q: expected id of %s (%s), got %q", path, alias, want, got)
	}
	return nil
}

func (s *commonSteps) fieldShouldHaveItems(ctx context.Context, path string, want int) error {
	v, err := s.tc.Field(path)
	if err != nil {
		return err
	}
	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("field %q is %T, not a list", path, v)
	}
	if len(items) != want {
		return fmt.Errorf("field %q: expected %d items, got %d", path, want, len(items))
	}
	return nil
}

func (s *commonSteps) bodyShouldContain(ctx context.Context, text string) error {
	if !strings.Contains(string(s.tc.Body()), text) {
		return fmt.Errorf("response body does not contain %q", text)
	}
	return nil
}

func (s *commonSteps) bodyShouldNotContain(ctx context.Context, text string) error {
	if strings.Contains(string(s.tc.Body()), text) {
		return fmt.Errorf("response body unexpectedly contains %q", text)
	}
	return nil
}
