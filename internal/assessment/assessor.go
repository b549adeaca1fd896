// Package assessment evaluates whether a claim is worth pursuing: the
// limitation period, the small-claims value threshold and the defendant's
// solvency. Failed checks are advisory warnings the hosting application may
// block on or let the user override; they are never errors.
package assessment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/claims"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/config"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/dates"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/money"
)

// Check is one pass/fail viability check with its user-facing message.
type Check struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Strength carries informational claim-strength fields. They never gate the
// pass/fail checks.
type Strength struct {
	Score      int      `json:"score"`
	Analysis   string   `json:"analysis"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

// Result is the outcome of a viability assessment.
type Result struct {
	Limitation     Check     `json:"limitation"`
	Value          Check     `json:"value"`
	Solvency       Check     `json:"solvency"`
	Viable         bool      `json:"viable"`
	Recommendation string    `json:"recommendation"`
	Strength       *Strength `json:"strength,omitempty"`
}

// Assessor runs the viability checks against the configured thresholds.
type Assessor struct {
	rules config.RulesConfig
	calc  *money.Calculator
}

// NewAssessor creates an assessor sharing the given calculator.
func NewAssessor(rules config.RulesConfig, calc *money.Calculator) *Assessor {
	return &Assessor{rules: rules, calc: calc}
}

// Assess runs all three checks against the claim snapshot as of now and
// derives the overall viability and recommendation. The claim is never
// mutated.
func (a *Assessor) Assess(cl claims.Claim, now time.Time) Result {
	totals := a.calc.Totals(cl, now)

	result := Result{
		Limitation: a.checkLimitation(cl, now),
		Value:      a.checkValue(totals.TotalValue),
		Solvency:   a.checkSolvency(cl.Defendant),
	}
	result.Viable = result.Limitation.Passed && result.Value.Passed && result.Solvency.Passed
	result.Recommendation = a.recommend(result, totals.TotalValue)
	result.Strength = a.strength(cl, result)
	return result
}

func (a *Assessor) checkLimitation(cl claims.Claim, now time.Time) Check {
	check := Check{Name: "limitation"}

	anchor := cl.Invoice.IssueDate
	if anchor == nil {
		anchor = cl.Invoice.DueDate
	}
	if anchor == nil {
		check.Passed = true
		check.Message = "No invoice date recorded; limitation period cannot be verified."
		return check
	}

	expiry := dates.AddYears(dates.Truncate(*anchor), a.rules.LimitationYears)
	if dates.SignedDays(expiry, now) > 0 {
		check.Passed = false
		check.Message = fmt.Sprintf(
			"The debt is older than the %d-year limitation period and is statute-barred; court recovery is no longer available.",
			a.rules.LimitationYears)
		return check
	}

	check.Passed = true
	remaining := dates.DaysBetween(now, expiry)
	check.Message = fmt.Sprintf(
		"Within the %d-year limitation period (%d days remaining).",
		a.rules.LimitationYears, remaining)
	return check
}

func (a *Assessor) checkValue(total decimal.Decimal) Check {
	check := Check{Name: "value"}
	ceiling := decimal.NewFromFloat(a.rules.SmallClaimsCeiling)

	if total.GreaterThan(ceiling) {
		check.Passed = false
		check.Message = fmt.Sprintf(
			"Total claim value £%s exceeds the £%s small claims limit; the claim would be allocated to the fast or multi track.",
			total.StringFixed(2), ceiling.StringFixed(2))
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf(
		"Total claim value £%s is within the £%s small claims limit.",
		total.StringFixed(2), ceiling.StringFixed(2))
	return check
}

// checkSolvency distinguishes a dissolved defendant (recovery is legally
// impossible) from a merely insolvent one (recovery possible but likely
// uneconomic). The two messages must never be interchangeable.
func (a *Assessor) checkSolvency(defendant claims.Party) Check {
	check := Check{Name: "solvency"}

	switch defendant.SolvencyOrUnknown() {
	case claims.SolvencyDissolved:
		check.Passed = false
		check.Message = "The defendant company has been dissolved; it no longer legally exists and recovery is legally impossible unless the company is restored to the register."
	case claims.SolvencyInsolvent:
		check.Passed = false
		check.Message = "The defendant is in an insolvency process; recovery is still legally possible but you would rank as an unsecured creditor and pursuing the claim is likely uneconomic."
	case claims.SolvencyActive:
		check.Passed = true
		check.Message = "The defendant is recorded as active."
	default:
		check.Passed = true
		check.Message = "The defendant's solvency status is unknown; no adverse record found."
	}
	return check
}

func (a *Assessor) recommend(r Result, total decimal.Decimal) string {
	switch {
	case !r.Limitation.Passed:
		return "Do not proceed: the claim is statute-barred."
	case !r.Solvency.Passed:
		return "Verify the defendant's status before spending money on recovery; a dissolved or insolvent defendant rarely repays."
	case !r.Value.Passed:
		return fmt.Sprintf(
			"Proceed on the fast or multi track: at £%s the claim is above the small claims limit, so cost rules differ and legal advice is recommended.",
			total.StringFixed(2))
	default:
		return "Proceed with the small claims process."
	}
}

// strength derives the informational score and weakness list. A party named
// "Unknown" counts as absent here only; it never affects the checks above.
func (a *Assessor) strength(cl claims.Claim, r Result) *Strength {
	score := 100
	var weaknesses []string

	if !cl.Defendant.HasName() {
		score -= 25
		weaknesses = append(weaknesses, "defendant identity is incomplete")
	}
	if cl.Invoice.DueDate == nil {
		score -= 10
		weaknesses = append(weaknesses, "no contractual due date recorded; the default payment term applies")
	}
	if cl.Invoice.Number == "" {
		score -= 10
		weaknesses = append(weaknesses, "no invoice number recorded")
	}
	if !cl.HasEvent(claims.EventInvoiceIssued) {
		score -= 10
		weaknesses = append(weaknesses, "no record of the invoice being issued")
	}
	if !r.Limitation.Passed {
		score -= 40
		weaknesses = append(weaknesses, "claim is statute-barred")
	}
	if !r.Solvency.Passed {
		score -= 30
		weaknesses = append(weaknesses, "defendant solvency is adverse")
	}
	if score < 0 {
		score = 0
	}

	analysis := "The documentary record supports the claim."
	if len(weaknesses) > 0 {
		analysis = fmt.Sprintf("The claim has %d identified weakness(es) that may affect recovery.", len(weaknesses))
	}

	return &Strength{Score: score, Analysis: analysis, Weaknesses: weaknesses}
}
