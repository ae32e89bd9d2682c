package e2e

import (
	"github.com/cucumber/godog"

	"kinfolk/e2e/steps/common"
	"kinfolk/e2e/steps/family"
	"kinfolk/e2e/steps/report"
)

// RegisterSteps registers the step definitions of every feature area.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	family.RegisterSteps(ctx, tc)
	report.RegisterSteps(ctx, tc)
}
