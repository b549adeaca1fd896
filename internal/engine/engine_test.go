package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/claims"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/config"
	"github.com/92younes/claimcraft-uk-debt-recovery-assistant-sub002/internal/dates"
)

var today = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func claimFixture(amount int64, dueDaysAgo int, defendantCategory claims.PartyCategory) claims.Claim {
	due := dates.AddDays(today, -dueDaysAgo)
	issue := dates.AddDays(due, -30)
	return claims.Claim{
		ID:       "claim-1",
		Claimant: claims.Party{Category: claims.PartyBusiness, Name: "Creditor Ltd"},
		Defendant: claims.Party{
			Category: defendantCategory,
			Name:     "Debtor",
			Solvency: claims.SolvencyActive,
		},
		Invoice: claims.Invoice{
			Number:    "INV-300",
			IssueDate: &issue,
			DueDate:   &due,
			Amount:    decimal.NewFromInt(amount),
			Currency:  "GBP",
		},
		Events: []claims.TimelineEvent{
			claims.NewTimelineEvent(claims.EventInvoiceIssued, issue, "Invoice issued"),
		},
	}
}

func TestEvaluateB2BClaim(t *testing.T) {
	// Principal £10,000, B2B, due 90 days ago.
	e := New(config.DefaultRules())
	result := e.Evaluate(claimFixture(10000, 90, claims.PartyBusiness), today)

	assert.Equal(t, "claim-1", result.ClaimID)
	assert.Equal(t, 90, result.Totals.Interest.DaysOverdue)
	assert.Equal(t, "3.6301", result.Totals.Interest.DailyRate.StringFixed(4))
	assert.Equal(t, "326.71", result.Totals.Interest.TotalInterest.StringFixed(2))
	assert.True(t, result.Totals.Compensation.Equal(decimal.NewFromInt(100)),
		"top compensation tier applies at £10,000")
	assert.True(t, result.Totals.CourtFee.Equal(decimal.NewFromInt(455)),
		"court fee %s, expected 455", result.Totals.CourtFee)
	assert.Equal(t, claims.StageOverdue, result.Workflow.Stage)
}

func TestEvaluateB2CClaim(t *testing.T) {
	// Principal £5,000, individual defendant.
	e := New(config.DefaultRules())
	result := e.Evaluate(claimFixture(5000, 120, claims.PartyIndividual), today)

	assert.True(t, result.Totals.Compensation.IsZero(),
		"compensation must be zero for any individual-involving claim")
	assert.True(t, result.Totals.Interest.AnnualRate.Equal(decimal.NewFromFloat(8.0)),
		"non-commercial claims accrue at the fixed statutory rate")
}

func TestEvaluateNotYetDue(t *testing.T) {
	e := New(config.DefaultRules())
	result := e.Evaluate(claimFixture(2000, -15, claims.PartyBusiness), today)

	assert.Equal(t, claims.StageDraft, result.Workflow.Stage)
	assert.Equal(t, 0, result.Totals.Interest.DaysOverdue)
	assert.True(t, result.Totals.Interest.TotalInterest.IsZero())
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := New(config.DefaultRules())
	cl := claimFixture(10000, 90, claims.PartyBusiness)

	first := e.Evaluate(cl, today)
	second := e.Evaluate(cl, today)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON,
		"identical inputs and current date must yield byte-identical results")
}

func TestEvaluateDoesNotMutateTheClaim(t *testing.T) {
	e := New(config.DefaultRules())
	cl := claimFixture(10000, 90, claims.PartyBusiness)

	before, err := json.Marshal(cl)
	require.NoError(t, err)
	e.Evaluate(cl, today)
	after, err := json.Marshal(cl)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestEvaluateReflectsNewFacts(t *testing.T) {
	// Re-evaluation with a later current date must pick up the extra accrual:
	// no memoization may survive between calls.
	e := New(config.DefaultRules())
	cl := claimFixture(10000, 90, claims.PartyBusiness)

	result90 := e.Evaluate(cl, today)
	result91 := e.Evaluate(cl, dates.AddDays(today, 1))

	assert.Equal(t, 90, result90.Totals.Interest.DaysOverdue)
	assert.Equal(t, 91, result91.Totals.Interest.DaysOverdue)
	assert.True(t, result91.Totals.Interest.TotalInterest.GreaterThan(result90.Totals.Interest.TotalInterest))
}
