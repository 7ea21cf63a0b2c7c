// Package ics emits RFC 5545 calendar text for a single recurring event.
package ics

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodian-app/upkeep/internal/pkg/schedule"
	"github.com/custodian-app/upkeep/internal/pkg/timeutil"
)

// ErrInvalidEventWindow reports a zero start/end or an end before the start.
// Reaching it from a well-formed task indicates a bug upstream.
var ErrInvalidEventWindow = errors.New("invalid event window")

const (
	uidDomain = "upkeep.app"
	foldAt    = 75
)

// Event is a single calendar event. Start and End are absolute UTC instants.
// RRule, if set, is the value part of an RRULE property. Priority is the
// task's ordinal priority (1 highest .. 3 lowest); 0 omits the property.
type Event struct {
	UID          string
	Title        string
	Description  string
	Location     string
	URL          string
	CalendarName string
	Start        time.Time
	End          time.Time
	RRule        string
	Priority     int
}

// Build renders the event as an RFC 5545 VCALENDAR: CRLF line endings
// throughout (including the final line), 75-character folding, escaped text
// values.
func Build(ev Event) (string, error) {
	if ev.Start.IsZero() || ev.End.IsZero() || ev.End.Before(ev.Start) {
		return "", fmt.Errorf("%w: start=%s end=%s", ErrInvalidEventWindow, ev.Start, ev.End)
	}

	name := ev.CalendarName
	if name == "" {
		name = "Upkeep"
	}
	uid := ev.UID
	if uid == "" {
		uid = randomUID()
	}
	title := ev.Title
	if title == "" {
		title = "Task"
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//" + escape(name) + "//EN",
		"X-WR-CALNAME:" + escape(name),
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + uid,
		"DTSTAMP:" + timeutil.ToICSUTC(time.Now()),
		"DTSTART:" + timeutil.ToICSUTC(ev.Start),
		"DTEND:" + timeutil.ToICSUTC(ev.End),
		"SUMMARY:" + escape(title),
	}
	if p := mapPriority(ev.Priority); p != 0 {
		lines = append(lines, fmt.Sprintf("PRIORITY:%d", p))
	}
	if ev.Description != "" {
		lines = append(lines, "DESCRIPTION:"+escape(ev.Description))
	}
	if ev.Location != "" {
		lines = append(lines, "LOCATION:"+escape(ev.Location))
	}
	if ev.URL != "" {
		lines = append(lines, "URL:"+escape(ev.URL))
	}
	if ev.RRule != "" {
		lines = append(lines, "RRULE:"+ev.RRule)
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR")

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(fold(line))
		b.WriteString("\r\n")
	}
	return b.String(), nil
}

// SaturdayRule derives the RRULE value for a parsed frequency with every
// occurrence pinned to a Saturday. Daily and weekly rules filter to
// Saturdays; monthly and yearly rules repeat on the anchor's ordinal Saturday
// of the month, or the last Saturday when the anchor was a 5th Saturday.
// Returns "" when the frequency describes no recurrence.
func SaturdayRule(f schedule.Frequency, anchor time.Time) string {
	if f.Kind == schedule.FreqNone || f.Interval < 1 {
		return ""
	}
	rule := fmt.Sprintf("FREQ=%s;INTERVAL=%d", f.Kind, f.Interval)
	switch f.Kind {
	case schedule.FreqDaily, schedule.FreqWeekly:
		rule += ";BYDAY=SA"
	case schedule.FreqMonthly, schedule.FreqYearly:
		rule += fmt.Sprintf(";BYDAY=SA;BYSETPOS=%d", schedule.SaturdaySetPos(anchor))
	}
	return rule
}

// escape applies RFC 5545 text escaping: backslash, semicolon, comma, and
// line breaks.
func escape(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, ";", `\;`)
	v = strings.ReplaceAll(v, ",", `\,`)
	v = strings.ReplaceAll(v, "\r\n", `\n`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	return v
}

// fold splits a content line longer than 75 characters into continuation
// lines prefixed with a single space, joined by CRLF.
func fold(line string) string {
	if len(line) <= foldAt {
		return line
	}
	var b strings.Builder
	for i := 0; i < len(line); i += foldAt {
		end := i + foldAt
		if end > len(line) {
			end = len(line)
		}
		if i > 0 {
			b.WriteString("\r\n ")
		}
		b.WriteString(line[i:end])
	}
	return b.String()
}

// mapPriority converts an ordinal task priority to the ICS 1..9 scale.
func mapPriority(p int) int {
	switch p {
	case 1:
		return 2
	case 2:
		return 5
	case 3:
		return 8
	}
	return 0
}

func randomUID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf) + "@" + uidDomain
}
