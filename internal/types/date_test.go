package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToDate(t *testing.T) {
	// 23:45 at UTC+5 is 18:45 UTC, still March 15
	ts := time.Date(2026, 3, 15, 23, 45, 12, 99, time.FixedZone("UTC+5", 5*3600))
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), ToDate(ts))

	// 02:00 at UTC+5 is the previous UTC day
	early := time.Date(2026, 3, 15, 2, 0, 0, 0, time.FixedZone("UTC+5", 5*3600))
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), ToDate(early))
}

func TestAddDays(t *testing.T) {
	d := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), AddDays(d, 3))
	assert.Equal(t, time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC), AddDays(d, -3))
}

func TestAddMonths(t *testing.T) {
	d := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), AddMonths(d, 3))

	// month-end normalization follows time.AddDate
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), AddMonths(jan31, 1))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, DaysBetween(a, b))
	assert.Equal(t, -10, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestMaxDate(t *testing.T) {
	earlier := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, later, MaxDate(earlier, later))
	assert.Equal(t, later, MaxDate(later, earlier))
}
