package money

import (
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

func businessParty(name string) claims.Party {
	return claims.Party{Category: claims.PartyBusiness, Name: name, Solvency: claims.SolvencyActive}
}

func individualParty(name string) claims.Party {
	return claims.Party{Category: claims.PartyIndividual, Name: name}
}

func testClaim(amount int64, dueDaysAgo int, b2b bool) claims.Claim {
	due := dates.AddDays(today, -dueDaysAgo)
	issue := dates.AddDays(due, -30)
	defendant := businessParty("Debtor Ltd")
	if !b2b {
		defendant = individualParty("J Smith")
	}
	return claims.Claim{
		Claimant:  businessParty("Creditor Ltd"),
		Defendant: defendant,
		Invoice: claims.Invoice{
			Number:    "INV-001",
			IssueDate: &issue,
			DueDate:   &due,
			Amount:    decimal.NewFromInt(amount),
			Currency:  "GBP",
		},
	}
}

func newCalculator() *Calculator {
	return NewCalculator(config.DefaultRules())
}

func TestDueDate(t *testing.T) {
	calc := newCalculator()

	t.Run("Uses Invoice Due Date When Present", func(t *testing.T) {
		cl := testClaim(1000, 10, true)
		due := calc.DueDate(cl.Invoice)
		require.NotNil(t, due)
		assert.Equal(t, dates.AddDays(today, -10), *due)
	})

	t.Run("Falls Back To Issue Date Plus Default Term", func(t *testing.T) {
		issue := dates.AddDays(today, -60)
		inv := claims.Invoice{IssueDate: &issue, Amount: decimal.NewFromInt(500)}
		due := calc.DueDate(inv)
		require.NotNil(t, due)
		assert.Equal(t, dates.AddDays(issue, 30), *due)
	})

	t.Run("Nil When No Dates Known", func(t *testing.T) {
		assert.Nil(t, calc.DueDate(claims.Invoice{Amount: decimal.NewFromInt(500)}))
	})
}

func TestInterest(t *testing.T) {
	calc := newCalculator()

	t.Run("B2B Uses Commercial Rate", func(t *testing.T) {
		cl := testClaim(10000, 90, true)
		result := calc.Interest(cl, today)

		assert.Equal(t, 90, result.DaysOverdue)
		// base 5.25% + 8% uplift = 13.25%
		assert.True(t, result.AnnualRate.Equal(decimal.NewFromFloat(13.25)),
			"annual rate was %s", result.AnnualRate)
		// 10000 * 13.25% / 365 = 3.6301 at 4 d.p.
		assert.Equal(t, "3.6301", result.DailyRate.StringFixed(4))
		// 3.6301 * 90 = 326.71 at 2 d.p.
		assert.Equal(t, "326.71", result.TotalInterest.StringFixed(2))
	})

	t.Run("Non B2B Uses Statutory Rate", func(t *testing.T) {
		cl := testClaim(5000, 90, false)
		result := calc.Interest(cl, today)

		assert.True(t, result.AnnualRate.Equal(decimal.NewFromFloat(8.0)),
			"annual rate was %s", result.AnnualRate)
		assert.Equal(t, "1.0959", result.DailyRate.StringFixed(4))
	})

	t.Run("Total Equals Daily Rate Times Days Overdue", func(t *testing.T) {
		for _, days := range []int{1, 7, 30, 90, 365, 1000} {
			cl := testClaim(2500, days, true)
			result := calc.Interest(cl, today)
			expected := result.DailyRate.Mul(decimal.NewFromInt(int64(days))).Round(2)
			assert.True(t, result.TotalInterest.Equal(expected),
				"days=%d: total %s, expected %s", days, result.TotalInterest, expected)
		}
	})

	t.Run("Zero Days Overdue Yields Zero Interest", func(t *testing.T) {
		cl := testClaim(10000, -30, true) // due 30 days in the future
		result := calc.Interest(cl, today)

		assert.Equal(t, 0, result.DaysOverdue)
		assert.True(t, result.TotalInterest.IsZero())
		assert.False(t, result.DailyRate.IsZero(), "daily rate is still reported before the due date")
	})

	t.Run("No Dates Yields Zero Result Not Error", func(t *testing.T) {
		cl := claims.Claim{
			Claimant:  businessParty("A"),
			Defendant: businessParty("B"),
			Invoice:   claims.Invoice{Amount: decimal.NewFromInt(9999)},
		}
		result := calc.Interest(cl, today)

		assert.Nil(t, result.DueDate)
		assert.Equal(t, 0, result.DaysOverdue)
		assert.True(t, result.TotalInterest.IsZero())
		assert.True(t, result.DailyRate.IsZero())
	})

	t.Run("Zero Amount Yields Zero Result", func(t *testing.T) {
		cl := testClaim(0, 90, true)
		result := calc.Interest(cl, today)
		assert.True(t, result.TotalInterest.IsZero())
		assert.True(t, result.DailyRate.IsZero())
	})
}

func TestCompensation(t *testing.T) {
	calc := newCalculator()

	t.Run("Tiers By Principal Band", func(t *testing.T) {
		cases := []struct {
			principal int64
			expected  int64
		}{
			{500, 40},
			{999, 40},
			{1000, 70},
			{9999, 70},
			{10000, 100},
			{250000, 100},
		}
		for _, tc := range cases {
			cl := testClaim(tc.principal, 30, true)
			got := calc.Compensation(cl)
			assert.True(t, got.Equal(decimal.NewFromInt(tc.expected)),
				"principal %d: compensation %s, expected %d", tc.principal, got, tc.expected)
		}
	})

	t.Run("Zero For Any Individual Involving Claim", func(t *testing.T) {
		cl := testClaim(10000, 365, false)
		assert.True(t, calc.Compensation(cl).IsZero())

		// Individual claimant against a business defendant is equally non-B2B.
		cl = testClaim(10000, 365, true)
		cl.Claimant = individualParty("Sole trader without company")
		assert.True(t, calc.Compensation(cl).IsZero())
	})
}

func TestCourtFee(t *testing.T) {
	calc := newCalculator()

	fee := func(v float64) decimal.Decimal {
		return calc.CourtFee(decimal.NewFromFloat(v))
	}

	t.Run("Band Schedule", func(t *testing.T) {
		cases := []struct {
			base     float64
			expected int64
		}{
			{100, 35},
			{350, 50},
			{750, 70},
			{1200, 80},
			{2000, 115},
			{4000, 205},
			{7500, 455},
			{10426.71, 455},
			{150000, 455},
		}
		for _, tc := range cases {
			assert.True(t, fee(tc.base).Equal(decimal.NewFromInt(tc.expected)),
				"base %.2f: fee %s, expected %d", tc.base, fee(tc.base), tc.expected)
		}
	})

	t.Run("Cap Is Enforced Exactly Above The Threshold", func(t *testing.T) {
		capped := decimal.NewFromInt(10000)
		for _, base := range []float64{200000, 500000, 1000000} {
			assert.True(t, fee(base).Equal(capped),
				"base %.0f: fee %s, expected the capped %s", base, fee(base), capped)
		}
	})

	t.Run("Non Decreasing In Claim Value", func(t *testing.T) {
		values := []float64{50, 299, 300, 499, 500, 999, 1000, 1499, 1500,
			2999, 3000, 4999, 5000, 9999, 10000, 50000, 199999, 200000, 900000}
		prev := decimal.Zero
		for _, v := range values {
			current := fee(v)
			assert.True(t, current.GreaterThanOrEqual(prev),
				"fee decreased at base %.0f: %s < %s", v, current, prev)
			prev = current
		}
	})

	t.Run("Zero Base Yields Zero Fee", func(t *testing.T) {
		assert.True(t, fee(0).IsZero())
	})
}

func TestTotals(t *testing.T) {
	calc := newCalculator()

	t.Run("Fee Base Includes Compensation", func(t *testing.T) {
		// Principal alone sits in the £205 band; the £70 compensation pushes
		// the fee base into the £455 band.
		cl := testClaim(4950, -10, true) // not yet due, so zero interest
		totals := calc.Totals(cl, today)

		assert.True(t, totals.Interest.TotalInterest.IsZero())
		assert.True(t, totals.Compensation.Equal(decimal.NewFromInt(70)))
		assert.True(t, totals.TotalValue.Equal(decimal.NewFromInt(5020)))
		assert.True(t, totals.CourtFee.Equal(decimal.NewFromInt(455)),
			"fee %s must be charged on principal + interest + compensation", totals.CourtFee)

		principalOnlyFee := calc.CourtFee(totals.Principal)
		assert.True(t, principalOnlyFee.Equal(decimal.NewFromInt(205)))
		assert.False(t, totals.CourtFee.Equal(principalOnlyFee))
	})

	t.Run("Idempotent For Identical Inputs", func(t *testing.T) {
		cl := testClaim(10000, 90, true)
		first := calc.Totals(cl, today)
		second := calc.Totals(cl, today)
		assert.Equal(t, first, second)
	})
}
