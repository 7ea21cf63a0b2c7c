package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/custodian-app/upkeep/internal/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() Event {
	return Event{
		UID:          "abc123@upkeep.app",
		Title:        "Replace filter",
		CalendarName: "Upkeep",
		Start:        time.Date(2025, 9, 6, 15, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 9, 6, 16, 0, 0, 0, time.UTC),
		Priority:     2,
	}
}

func TestBuild_Envelope(t *testing.T) {
	out, err := Build(testEvent())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"), "must end with trailing CRLF")
	assert.Contains(t, out, "VERSION:2.0\r\n")
	assert.Contains(t, out, "X-WR-CALNAME:Upkeep\r\n")
	assert.Contains(t, out, "CALSCALE:GREGORIAN\r\n")
	assert.Contains(t, out, "METHOD:PUBLISH\r\n")
	assert.Contains(t, out, "UID:abc123@upkeep.app\r\n")
	assert.Contains(t, out, "DTSTART:20250906T150000Z\r\n")
	assert.Contains(t, out, "DTEND:20250906T160000Z\r\n")
	assert.Contains(t, out, "SUMMARY:Replace filter\r\n")

	// Only CRLF endings anywhere.
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")
}

func TestBuild_PriorityMapping(t *testing.T) {
	for prio, want := range map[int]string{
		1: "PRIORITY:2\r\n",
		2: "PRIORITY:5\r\n",
		3: "PRIORITY:8\r\n",
	} {
		ev := testEvent()
		ev.Priority = prio
		out, err := Build(ev)
		require.NoError(t, err)
		assert.Contains(t, out, want, "priority %d", prio)
	}

	ev := testEvent()
	ev.Priority = 0
	out, err := Build(ev)
	require.NoError(t, err)
	assert.NotContains(t, out, "PRIORITY:")
}

func TestBuild_EscapesText(t *testing.T) {
	ev := testEvent()
	ev.Title = "Check; oil, belts"
	ev.Description = "Line1\nLine2 \\ done"
	out, err := Build(ev)
	require.NoError(t, err)

	assert.Contains(t, out, `SUMMARY:Check\; oil\, belts`)
	assert.Contains(t, out, `Line1\nLine2 \\ done`)
}

func TestBuild_FoldsLongLines(t *testing.T) {
	ev := testEvent()
	ev.Description = strings.Repeat("a", 200)
	out, err := Build(ev)
	require.NoError(t, err)

	for _, line := range strings.Split(out, "\r\n") {
		assert.LessOrEqual(t, len(line), 76, "line %q", line)
	}
	// Continuation lines start with a single space.
	assert.Contains(t, out, "\r\n a")
}

func TestBuild_InvalidWindow(t *testing.T) {
	ev := testEvent()
	ev.End = ev.Start.Add(-time.Hour)
	_, err := Build(ev)
	assert.ErrorIs(t, err, ErrInvalidEventWindow)

	ev = testEvent()
	ev.Start = time.Time{}
	_, err = Build(ev)
	assert.ErrorIs(t, err, ErrInvalidEventWindow)
}

func TestBuild_RandomUIDWhenEmpty(t *testing.T) {
	ev := testEvent()
	ev.UID = ""
	out, err := Build(ev)
	require.NoError(t, err)
	assert.Contains(t, out, "@upkeep.app")
}

func TestSaturdayRule(t *testing.T) {
	// 2025-09-13 is the 2nd Saturday of September.
	secondSat := time.Date(2025, 9, 13, 0, 0, 0, 0, time.UTC)
	// 2025-05-31 is a 5th Saturday.
	fifthSat := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		freq   schedule.Frequency
		anchor time.Time
		want   string
	}{
		{"daily", schedule.Frequency{Kind: schedule.FreqDaily, Interval: 1}, secondSat,
			"FREQ=DAILY;INTERVAL=1;BYDAY=SA"},
		{"biweekly", schedule.Frequency{Kind: schedule.FreqWeekly, Interval: 2}, secondSat,
			"FREQ=WEEKLY;INTERVAL=2;BYDAY=SA"},
		{"monthly second saturday", schedule.Frequency{Kind: schedule.FreqMonthly, Interval: 1}, secondSat,
			"FREQ=MONTHLY;INTERVAL=1;BYDAY=SA;BYSETPOS=2"},
		{"monthly fifth saturday pins last", schedule.Frequency{Kind: schedule.FreqMonthly, Interval: 3}, fifthSat,
			"FREQ=MONTHLY;INTERVAL=3;BYDAY=SA;BYSETPOS=-1"},
		{"yearly", schedule.Frequency{Kind: schedule.FreqYearly, Interval: 1}, secondSat,
			"FREQ=YEARLY;INTERVAL=1;BYDAY=SA;BYSETPOS=2"},
		{"none", schedule.Frequency{Kind: schedule.FreqNone}, secondSat, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, SaturdayRule(c.freq, c.anchor))
		})
	}
}
