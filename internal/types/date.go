package types

import "time"

// Billing works on calendar dates, not instants: paid_through, expire_on and
// coupon redemption windows are civil dates normalized to UTC midnight.

// ToDate truncates a timestamp to its UTC calendar date.
func ToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar date.
func Today() time.Time {
	return ToDate(time.Now())
}

// AddDays returns the date n days after d.
func AddDays(d time.Time, n int) time.Time {
	return ToDate(d).AddDate(0, 0, n)
}

// AddMonths returns the date n calendar months after d, following
// time.AddDate month-end normalization.
func AddMonths(d time.Time, n int) time.Time {
	return ToDate(d).AddDate(0, n, 0)
}

// DaysBetween returns the number of whole days from a to b, negative when b
// precedes a.
func DaysBetween(a, b time.Time) int {
	return int(ToDate(b).Sub(ToDate(a)).Hours() / 24)
}

// MaxDate returns the later of two dates.
func MaxDate(a, b time.Time) time.Time {
	if ToDate(b).After(ToDate(a)) {
		return ToDate(b)
	}
	return ToDate(a)
}
