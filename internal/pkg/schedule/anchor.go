package schedule

import "time"

// AddStep advances t by a calendar step. Month addition clamps to the last
// day of the target month so Jan 31 + 1 month lands on Feb 28/29 rather than
// overflowing into March.
func AddStep(t time.Time, st Step) time.Time {
	if st.Years != 0 {
		t = t.AddDate(st.Years, 0, 0)
	}
	if st.Months != 0 {
		y, m, d := t.Date()
		hh, mm, ss := t.Clock()
		first := time.Date(y, m, 1, hh, mm, ss, t.Nanosecond(), t.Location())
		target := first.AddDate(0, st.Months, 0)
		last := daysInMonth(target.Year(), target.Month())
		if d > last {
			d = last
		}
		t = time.Date(target.Year(), target.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
	}
	if st.Weeks != 0 {
		t = t.AddDate(0, 0, st.Weeks*7)
	}
	if st.Days != 0 {
		t = t.AddDate(0, 0, st.Days)
	}
	return t
}

// SaturdayOnOrBefore returns midnight of the Saturday on or before t's date,
// in t's location.
func SaturdayOnOrBefore(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	delta := (int(day.Weekday()) - int(time.Saturday) + 7) % 7
	return day.AddDate(0, 0, -delta)
}

// SaturdaySetPos returns which Saturday of its month the given date is
// (1..4). A 5th Saturday reports -1 so a monthly rule pins to "last Saturday"
// instead of an ordinal that most months do not have.
func SaturdaySetPos(t time.Time) int {
	y, m, _ := t.Date()

	nth := 0
	for d := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()); d.Month() == m; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday {
			nth++
			if d.Day() == t.Day() {
				if nth >= 5 {
					return -1
				}
				return nth
			}
		}
	}
	// t was not a Saturday; callers always pass an anchored date, but fall
	// back to "last Saturday" rather than emitting a bogus ordinal.
	return -1
}

func daysInMonth(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
