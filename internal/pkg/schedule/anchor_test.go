package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddStep_MonthClamp(t *testing.T) {
	// Jan 31 + 1 month clamps to Feb 28 (non-leap).
	got := AddStep(date(2025, time.January, 31), Step{Months: 1})
	assert.Equal(t, date(2025, time.February, 28), got)

	// Leap year keeps the 29th.
	got = AddStep(date(2024, time.January, 31), Step{Months: 1})
	assert.Equal(t, date(2024, time.February, 29), got)

	// A day that exists in the target month is preserved.
	got = AddStep(date(2025, time.April, 15), Step{Months: 3})
	assert.Equal(t, date(2025, time.July, 15), got)
}

func TestAddStep_YearsWeeksDays(t *testing.T) {
	got := AddStep(date(2025, time.March, 10), Step{Years: 1})
	assert.Equal(t, date(2026, time.March, 10), got)

	got = AddStep(date(2025, time.March, 10), Step{Weeks: 2})
	assert.Equal(t, date(2025, time.March, 24), got)

	got = AddStep(date(2025, time.March, 10), Step{Days: 3})
	assert.Equal(t, date(2025, time.March, 13), got)
}

func TestSaturdayOnOrBefore(t *testing.T) {
	// 2025-09-06 is a Saturday.
	sat := date(2025, time.September, 6)
	assert.Equal(t, sat, SaturdayOnOrBefore(sat))

	// Sunday through Friday roll back to the previous Saturday.
	assert.Equal(t, sat, SaturdayOnOrBefore(date(2025, time.September, 7)))
	assert.Equal(t, sat, SaturdayOnOrBefore(date(2025, time.September, 12)))
	assert.Equal(t, date(2025, time.September, 13), SaturdayOnOrBefore(date(2025, time.September, 13)))
}

func TestSaturdaySetPos(t *testing.T) {
	// September 2025 Saturdays: 6, 13, 20, 27.
	assert.Equal(t, 1, SaturdaySetPos(date(2025, time.September, 6)))
	assert.Equal(t, 2, SaturdaySetPos(date(2025, time.September, 13)))
	assert.Equal(t, 4, SaturdaySetPos(date(2025, time.September, 27)))

	// May 2025 has five Saturdays; the 31st is the 5th and maps to last.
	assert.Equal(t, -1, SaturdaySetPos(date(2025, time.May, 31)))

	// Not a Saturday.
	assert.Equal(t, -1, SaturdaySetPos(date(2025, time.September, 10)))
}
