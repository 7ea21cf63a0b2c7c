// Package timeutil converts between wall-clock time in an IANA zone and
// absolute UTC instants, and formats instants for iCalendar output.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidTimezone reports a missing or unknown IANA zone name.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Trailing "Z" or a numeric offset like "+02:00" / "-0700" on the input.
var offsetSuffixRe = regexp.MustCompile(`(?:Z|[+-]\d{2}:?\d{2})$`)

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// LocalInZoneToUTC interprets an ISO-like date-time string as wall-clock time
// in the given IANA zone and returns the corresponding UTC instant. Any
// trailing offset or zone designator on the input is ignored; the digits are
// what count. DST is resolved by the zone database.
//
//	LocalInZoneToUTC("2025-09-06T08:00", "America/Los_Angeles")
//	  -> 2025-09-06T15:00:00Z
func LocalInZoneToUTC(local, zone string) (time.Time, error) {
	if strings.TrimSpace(zone) == "" {
		return time.Time{}, ErrInvalidTimezone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, zone)
	}

	s := strings.TrimSpace(offsetSuffixRe.ReplaceAllString(strings.TrimSpace(local), ""))
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable local date-time %q", local)
}

// ToICSUTC formats an instant in the iCalendar UTC form YYYYMMDDTHHMMSSZ.
func ToICSUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
