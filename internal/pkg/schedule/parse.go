// Package schedule turns the free-text frequency and duration strings stored
// on maintenance tasks into values a calendar can work with.
package schedule

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// FreqKind is an RRULE-compatible frequency keyword, or None when the input
// did not describe a real recurrence.
type FreqKind string

const (
	FreqNone    FreqKind = ""
	FreqDaily   FreqKind = "DAILY"
	FreqWeekly  FreqKind = "WEEKLY"
	FreqMonthly FreqKind = "MONTHLY"
	FreqYearly  FreqKind = "YEARLY"
)

// Step is a calendar offset used to place the first occurrence of a task.
type Step struct {
	Days   int
	Weeks  int
	Months int
	Years  int
}

// Frequency is the normalized form of a task's frequency string.
type Frequency struct {
	Kind     FreqKind
	Interval int
	Step     Step
}

var (
	durationRe     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(min|mins|minute|minutes|hr|hrs|hour|hours|h|m)\b`)
	leadingFloatRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)
	quarterlyRe    = regexp.MustCompile(`\bquarter(ly)?\b|\bqtr\b`)
	everyNRe       = regexp.MustCompile(`(?:every\s*)?(\d+(?:\.\d+)?)\s*(day|days|week|weeks|month|months|year|years)\b`)
)

// ParseDurationMinutes converts a human duration string ("45 min", "1.5 hr",
// "2") into whole minutes. Unparseable input falls back to 60. The result is
// always at least 1.
func ParseDurationMinutes(val string) int {
	s := strings.ToLower(strings.TrimSpace(val))
	if s == "" {
		return 60
	}

	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		// No unit token: accept a bare or leading number.
		if f := leadingFloatRe.FindStringSubmatch(s); f != nil {
			if n, err := strconv.ParseFloat(f[1], 64); err == nil && n > 0 {
				return atLeastOne(n)
			}
		}
		return 60
	}

	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 60
	}
	switch unit := strings.ToLower(m[2]); {
	case strings.HasPrefix(unit, "m"):
		return atLeastOne(num)
	case strings.HasPrefix(unit, "h"):
		return atLeastOne(num * 60)
	}
	return 60
}

func atLeastOne(f float64) int {
	n := int(math.Round(f))
	if n < 1 {
		return 1
	}
	return n
}

// ParseFrequency normalizes a frequency string to a recurrence kind plus the
// calendar step to the first occurrence. Input that describes no recurrence
// yields FreqNone with a one-month step, used only to anchor a one-time event.
func ParseFrequency(str string) Frequency {
	s := strings.ToLower(strings.TrimSpace(str))
	if s == "" {
		return Frequency{Kind: FreqNone, Step: Step{Months: 1}}
	}

	switch {
	case quarterlyRe.MatchString(s):
		return Frequency{Kind: FreqMonthly, Interval: 3, Step: Step{Months: 3}}
	case strings.Contains(s, "daily"):
		return Frequency{Kind: FreqDaily, Interval: 1, Step: Step{Days: 1}}
	case strings.Contains(s, "weekly"):
		return Frequency{Kind: FreqWeekly, Interval: 1, Step: Step{Weeks: 1}}
	case strings.Contains(s, "monthly"):
		return Frequency{Kind: FreqMonthly, Interval: 1, Step: Step{Months: 1}}
	case strings.Contains(s, "yearly"), strings.Contains(s, "annual"):
		return Frequency{Kind: FreqYearly, Interval: 1, Step: Step{Years: 1}}
	}

	if m := everyNRe.FindStringSubmatch(s); m != nil {
		f, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			n := atLeastOne(f)
			switch {
			case strings.HasPrefix(m[2], "day"):
				return Frequency{Kind: FreqDaily, Interval: n, Step: Step{Days: n}}
			case strings.HasPrefix(m[2], "week"):
				return Frequency{Kind: FreqWeekly, Interval: n, Step: Step{Weeks: n}}
			case strings.HasPrefix(m[2], "month"):
				return Frequency{Kind: FreqMonthly, Interval: n, Step: Step{Months: n}}
			case strings.HasPrefix(m[2], "year"):
				return Frequency{Kind: FreqYearly, Interval: n, Step: Step{Years: n}}
			}
		}
	}

	return Frequency{Kind: FreqNone, Step: Step{Months: 1}}
}
