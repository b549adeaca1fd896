// Package engine composes the monetary calculator, viability assessor and
// stage classifier into a single evaluation over a claim snapshot. The
// engine is purely functional: it never mutates the claim, never reads the
// system clock, never logs and never caches — every call recomputes the
// full result from the inputs it is handed, so rapid repeated invocation is
// always safe and always reflects the latest facts.
package engine

import (
	"time"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/assessment"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/claims"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/config"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/money"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/workflow"
)

// Result is a full evaluation of one claim snapshot at one point in time.
type Result struct {
	ClaimID     string            `json:"claim_id,omitempty"`
	Totals      money.Totals      `json:"totals"`
	Assessment  assessment.Result `json:"assessment"`
	Workflow    workflow.State    `json:"workflow"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
}

// Engine evaluates claims against one set of jurisdiction constants.
type Engine struct {
	calc       *money.Calculator
	assessor   *assessment.Assessor
	classifier *workflow.Classifier
}

// New builds an engine over the given rule constants.
func New(rules config.RulesConfig) *Engine {
	calc := money.NewCalculator(rules)
	return &Engine{
		calc:       calc,
		assessor:   assessment.NewAssessor(rules, calc),
		classifier: workflow.NewClassifier(rules, calc),
	}
}

// Calculator exposes the shared monetary calculator. Every consumer of
// interest, compensation or fee figures goes through this one component;
// the formulas are implemented nowhere else.
func (e *Engine) Calculator() *money.Calculator {
	return e.calc
}

// Evaluate recomputes the claim's monetary position, viability assessment
// and workflow state as of now.
func (e *Engine) Evaluate(cl claims.Claim, now time.Time) Result {
	return Result{
		ClaimID:     cl.ID,
		Totals:      e.calc.Totals(cl, now),
		Assessment:  e.assessor.Assess(cl, now),
		Workflow:    e.classifier.Classify(cl, now),
		EvaluatedAt: now,
	}
}

// Assess runs only the viability checks.
func (e *Engine) Assess(cl claims.Claim, now time.Time) assessment.Result {
	return e.assessor.Assess(cl, now)
}

// Classify runs only the stage classifier.
func (e *Engine) Classify(cl claims.Claim, now time.Time) workflow.State {
	return e.classifier.Classify(cl, now)
}
