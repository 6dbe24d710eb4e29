package e2e

import (
	"github.com/cucumber/godog"

	"fantasy/e2e/steps/common"
	"fantasy/e2e/steps/market"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Health, raw requests and response assertions
	common.RegisterSteps(ctx, tc)

	// Registration, provisioning and trading
	market.RegisterSteps(ctx, tc)
}
