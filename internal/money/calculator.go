// Package money implements the monetary rules of UK small-claims debt
// recovery: statutory interest, late-payment compensation and the court
// issue fee. Every function is total — absent or zero inputs degrade to
// zero results, never errors — and pure: the current date is always passed
// in, results are recomputed from scratch on every call and nothing is
// cached.
package money

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/claims"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/config"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/dates"
)

const (
	// internalScale is the precision the daily rate is held at so that
	// consumers re-deriving totals do not compound rounding error.
	internalScale = 4
	// displayScale is the precision of all user-facing amounts.
	displayScale = 2
)

// InterestResult is the derived interest position of a claim. It is
// recomputed whenever the underlying facts or the current date change and is
// never stored independently of its inputs.
type InterestResult struct {
	DaysOverdue   int             `json:"days_overdue"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	DailyRate     decimal.Decimal `json:"daily_rate"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

// Totals is the full monetary position of a claim: the fee base is always
// principal + interest + compensation, never principal alone.
type Totals struct {
	Principal    decimal.Decimal `json:"principal"`
	Interest     InterestResult  `json:"interest"`
	Compensation decimal.Decimal `json:"compensation"`
	CourtFee     decimal.Decimal `json:"court_fee"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// Calculator applies the configured jurisdiction constants to claim facts.
type Calculator struct {
	rules config.RulesConfig
}

// NewCalculator creates a calculator over the given rule constants.
func NewCalculator(rules config.RulesConfig) *Calculator {
	return &Calculator{rules: rules}
}

// DueDate resolves the payment due date: the invoice due date when present,
// otherwise the issue date plus the default payment term. Returns nil when
// neither date is known — interest is not computable for such a claim.
func (c *Calculator) DueDate(inv claims.Invoice) *time.Time {
	if inv.DueDate != nil {
		d := dates.Truncate(*inv.DueDate)
		return &d
	}
	if inv.IssueDate != nil {
		d := dates.AddDays(dates.Truncate(*inv.IssueDate), c.rules.DefaultPaymentTermDays)
		return &d
	}
	return nil
}

// DaysOverdue returns whole days elapsed since the payment due date, floored
// at zero when the claim is not yet due or the due date is unknown.
func (c *Calculator) DaysOverdue(inv claims.Invoice, now time.Time) int {
	due := c.DueDate(inv)
	if due == nil {
		return 0
	}
	overdue := dates.SignedDays(*due, now)
	if overdue < 0 {
		return 0
	}
	return overdue
}

// AnnualRate returns the applicable annual interest rate in percent: the
// commercial statutory rate (Bank of England base + 8%) for B2B claims, the
// fixed statutory rate otherwise.
func (c *Calculator) AnnualRate(cl claims.Claim) decimal.Decimal {
	if cl.IsB2B() {
		return decimal.NewFromFloat(c.rules.CommercialRate())
	}
	return decimal.NewFromFloat(c.rules.StatutoryInterestRate)
}

// Interest computes the statutory interest accrued on a claim as of now.
// The daily rate is held at four decimal places internally; the total is
// rounded to two for display. A claim with no resolvable due date or a zero
// principal yields the zero result.
func (c *Calculator) Interest(cl claims.Claim, now time.Time) InterestResult {
	result := InterestResult{
		AnnualRate:    decimal.Zero,
		DailyRate:     decimal.Zero,
		TotalInterest: decimal.Zero,
	}

	due := c.DueDate(cl.Invoice)
	if due == nil {
		return result
	}
	result.DueDate = due

	if cl.Invoice.Amount.LessThanOrEqual(decimal.Zero) {
		return result
	}

	result.AnnualRate = c.AnnualRate(cl)
	result.DaysOverdue = c.DaysOverdue(cl.Invoice, now)

	daysPerYear := decimal.NewFromInt(int64(c.rules.DaysPerYear))
	result.DailyRate = cl.Invoice.Amount.
		Mul(result.AnnualRate).
		Div(decimal.NewFromInt(100)).
		Div(daysPerYear).
		Round(internalScale)

	if result.DaysOverdue == 0 {
		return result
	}

	result.TotalInterest = result.DailyRate.
		Mul(decimal.NewFromInt(int64(result.DaysOverdue))).
		Round(displayScale)

	return result
}

// Compensation returns the Late Payment of Commercial Debts fixed sum for
// the claim's principal band. Non-B2B claims always yield zero — this is a
// hard branch on the counterparty categories, not a rounding edge case.
func (c *Calculator) Compensation(cl claims.Claim) decimal.Decimal {
	if !cl.IsB2B() {
		return decimal.Zero
	}
	if cl.Invoice.Amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	best := decimal.Zero
	bestFloor := decimal.NewFromInt(-1)
	for _, band := range c.rules.CompensationBands {
		floor := decimal.NewFromFloat(band.MinPrincipal)
		if cl.Invoice.Amount.GreaterThanOrEqual(floor) && floor.GreaterThan(bestFloor) {
			bestFloor = floor
			best = decimal.NewFromFloat(band.Amount)
		}
	}
	return best
}

// CourtFee returns the issue fee for the given fee base. The base must be
// the total claim value (principal + interest + compensation). The band with
// the highest floor not exceeding the base applies; percentage bands are
// capped at the schedule's absolute maximum, so every value above the cap
// threshold yields the same fee.
func (c *Calculator) CourtFee(base decimal.Decimal) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var selected *config.FeeBand
	bestFloor := decimal.NewFromInt(-1)
	for i := range c.rules.FeeBands {
		band := c.rules.FeeBands[i]
		floor := decimal.NewFromFloat(band.MinValue)
		if base.GreaterThanOrEqual(floor) && floor.GreaterThan(bestFloor) {
			bestFloor = floor
			selected = &c.rules.FeeBands[i]
		}
	}
	if selected == nil {
		return decimal.Zero
	}

	if selected.Percent > 0 {
		fee := base.
			Mul(decimal.NewFromFloat(selected.Percent)).
			Div(decimal.NewFromInt(100)).
			Round(displayScale)
		cap := decimal.NewFromFloat(c.rules.FeeCap)
		if fee.GreaterThan(cap) {
			return cap
		}
		return fee
	}
	return decimal.NewFromFloat(selected.Fee)
}

// Totals recomputes the claim's full monetary position as of now.
func (c *Calculator) Totals(cl claims.Claim, now time.Time) Totals {
	interest := c.Interest(cl, now)
	compensation := c.Compensation(cl)

	principal := cl.Invoice.Amount
	if principal.LessThan(decimal.Zero) {
		principal = decimal.Zero
	}

	total := principal.Add(interest.TotalInterest).Add(compensation)
	return Totals{
		Principal:    principal,
		Interest:     interest,
		Compensation: compensation,
		CourtFee:     c.CourtFee(total),
		TotalValue:   total,
	}
}

// DisplayAmount rounds an internal-precision amount to the two decimal
// places shown to users.
func DisplayAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(displayScale)
}
