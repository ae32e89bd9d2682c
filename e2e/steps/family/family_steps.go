package family

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the part of the scenario context the family steps use.
type TestContext interface {
	POST(path string, body any) error
	PUT(path string, body any) error
	GET(path string, headers map[string]string) error
	Status() int
	Body() []byte
	StringField(path string) (string, error)
	Remember(alias, id string)
	ID(alias string) (string, error)
}

// RegisterSteps registers people, relation and tree steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &familySteps{tc: tc}

	ctx.Step(`^a person "([^"]*)" born "([^"]*)"$`, steps.createPersonBorn)
	ctx.Step(`^a person "([^"]*)"$`, steps.createPerson)
	ctx.Step(`^"([^"]*)" is the (father|mother|spouse|child) of "([^"]*)"$`, steps.link)
	ctx.Step(`^I link "([^"]*)" as (father|mother|spouse|child) of "([^"]*)"$`, steps.tryLink)
	ctx.Step(`^I set the parents of "([^"]*)" to "([^"]*)" and "([^"]*)"$`, steps.setParents)
	ctx.Step(`^I view the details of "([^"]*)"$`, steps.detail)
	ctx.Step(`^I view the tree of "([^"]*)"$`, steps.tree)
}

type familySteps struct {
	tc TestContext
}

func (s *familySteps) createPerson(ctx context.Context, name string) error {
	return s.create(map[string]any{"full_name": name})
}

func (s *familySteps) createPersonBorn(ctx context.Context, name, birth string) error {
	return s.create(map[string]any{"full_name": name, "birth_date": birth})
}

func (s *familySteps) create(body map[string]any) error {
	if err := s.tc.POST("/people", body); err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return fmt.Errorf("create person returned %d: %s", s.tc.Status(), s.tc.Body())
	}
	id, err := s.tc.StringField("id")
	if err != nil {
		return err
	}
	s.tc.Remember(body["full_name"].(string), id)
	return nil
}

// link records target as the relation of origin and requires success.
func (s *familySteps) link(ctx context.Context, target, relation, origin string) error {
	if err := s.tryLink(ctx, target, relation, origin); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("link %s as %s of %s returned %d: %s", target, relation, origin, s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *familySteps) tryLink(ctx context.Context, target, relation, origin string) error {
	targetID, err := s.tc.ID(target)
	if err != nil {
		return err
	}
	originID, err := s.tc.ID(origin)
	if err != nil {
		return err
	}
	return s.tc.POST("/people/"+originID+"/links", map[string]any{
		"target_id": targetID,
		"relation":  relation,
	})
}

func (s *familySteps) setParents(ctx context.Context, child, father, mother string) error {
	childID, err := s.tc.ID(child)
	if err != nil {
		return err
	}
	fatherID, err := s.tc.ID(father)
	if err != nil {
		return err
	}
	motherID, err := s.tc.ID(mother)
	if err != nil {
		return err
	}
	return s.tc.PUT("/people/"+childID+"/parents", map[string]any{
		"father_id": fatherID,
		"mother_id": motherID,
	})
}

func (s *familySteps) detail(ctx context.Context, name string) error {
	id, err := s.tc.ID(name)
	if err != nil {
		return err
	}
	return s.tc.GET("/people/"+id, nil)
}

func (s *familySteps) tree(ctx context.Context, name string) error {
	id, err := s.tc.ID(name)
	if err != nil {
		return err
	}
	return s.tc.GET("/people/"+id+"/tree", nil)
}
