// Package dates provides the calendar-date arithmetic shared by the
// monetary calculator, viability assessor and stage classifier. All
// computation is whole-day arithmetic on local dates; there is no time-zone
// conversion. Callers are responsible for checking date presence before
// calling in here.
package dates

import (
	"math"
	"time"
)

// Clock supplies the current date. Engine code never reads the system clock
// directly; a Clock is injected so evaluations are deterministic under test.
type Clock func() time.Time

// SystemClock reads the live system time.
func SystemClock() time.Time {
	return time.Now()
}

// Truncate drops the time-of-day component, keeping the calendar date in the
// value's own location.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the absolute difference between two dates in whole
// calendar days.
func DaysBetween(a, b time.Time) int {
	d := SignedDays(a, b)
	if d < 0 {
		return -d
	}
	return d
}

// SignedDays returns the number of whole calendar days from a to b: positive
// when b is after a, negative when b is before a. Rounding absorbs the odd
// 23/25-hour day around DST transitions.
func SignedDays(a, b time.Time) int {
	return int(math.Round(Truncate(b).Sub(Truncate(a)).Hours() / 24))
}

// AddDays returns the date n calendar days after t. n may be negative.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// AddYears returns the date n calendar years after t.
func AddYears(t time.Time, n int) time.Time {
	return t.AddDate(n, 0, 0)
}
