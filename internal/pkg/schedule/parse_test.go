package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDurationMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"45 min", 45},
		{"45min", 45},
		{"10 minutes", 10},
		{"1.5 hr", 90},
		{"2 hours", 120},
		{"1h", 60},
		{"30m", 30},
		{"2", 2},
		{"1.5", 2}, // rounded
		{"about 20 mins of work", 20},
		{"", 60},
		{"soon", 60},
		{"0 min", 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseDurationMinutes(c.in), "input %q", c.in)
	}
}

func TestParseFrequency_Keywords(t *testing.T) {
	cases := []struct {
		in   string
		want Frequency
	}{
		{"daily", Frequency{Kind: FreqDaily, Interval: 1, Step: Step{Days: 1}}},
		{"Weekly", Frequency{Kind: FreqWeekly, Interval: 1, Step: Step{Weeks: 1}}},
		{"monthly", Frequency{Kind: FreqMonthly, Interval: 1, Step: Step{Months: 1}}},
		{"yearly", Frequency{Kind: FreqYearly, Interval: 1, Step: Step{Years: 1}}},
		{"Annually", Frequency{Kind: FreqYearly, Interval: 1, Step: Step{Years: 1}}},
		// Quarterly is expressed as every-3-months, not a separate kind.
		{"quarterly", Frequency{Kind: FreqMonthly, Interval: 3, Step: Step{Months: 3}}},
		{"each quarter", Frequency{Kind: FreqMonthly, Interval: 3, Step: Step{Months: 3}}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseFrequency(c.in), "input %q", c.in)
	}
}

func TestParseFrequency_EveryN(t *testing.T) {
	cases := []struct {
		in   string
		want Frequency
	}{
		{"every 2 weeks", Frequency{Kind: FreqWeekly, Interval: 2, Step: Step{Weeks: 2}}},
		{"every 6 months", Frequency{Kind: FreqMonthly, Interval: 6, Step: Step{Months: 6}}},
		{"every 3 days", Frequency{Kind: FreqDaily, Interval: 3, Step: Step{Days: 3}}},
		{"2 years", Frequency{Kind: FreqYearly, Interval: 2, Step: Step{Years: 2}}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseFrequency(c.in), "input %q", c.in)
	}
}

func TestParseFrequency_NoRecurrence(t *testing.T) {
	for _, in := range []string{"", "as needed", "once", "when dirty"} {
		got := ParseFrequency(in)
		assert.Equal(t, FreqNone, got.Kind, "input %q", in)
		assert.Equal(t, Step{Months: 1}, got.Step, "input %q", in)
	}
}
