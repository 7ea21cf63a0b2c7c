package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalInZoneToUTC(t *testing.T) {
	// PDT is UTC-7 in September.
	got, err := LocalInZoneToUTC("2025-09-06T08:00", "America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 6, 15, 0, 0, 0, time.UTC), got)

	// PST is UTC-8 in January; DST is resolved by the zone database.
	got, err = LocalInZoneToUTC("2025-01-06T08:00", "America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 6, 16, 0, 0, 0, time.UTC), got)
}

func TestLocalInZoneToUTC_IgnoresOffsetSuffix(t *testing.T) {
	// A trailing Z or numeric offset on the input is discarded; the digits
	// are reinterpreted in the requested zone.
	for _, in := range []string{
		"2025-09-06T08:00:00Z",
		"2025-09-06T08:00+05:30",
		"2025-09-06 08:00:00-0700",
	} {
		got, err := LocalInZoneToUTC(in, "America/Los_Angeles")
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, time.Date(2025, 9, 6, 15, 0, 0, 0, time.UTC), got, "input %q", in)
	}
}

func TestLocalInZoneToUTC_Errors(t *testing.T) {
	_, err := LocalInZoneToUTC("2025-09-06T08:00", "")
	assert.ErrorIs(t, err, ErrInvalidTimezone)

	_, err = LocalInZoneToUTC("2025-09-06T08:00", "Mars/Olympus_Mons")
	assert.ErrorIs(t, err, ErrInvalidTimezone)

	_, err = LocalInZoneToUTC("not a date", "UTC")
	assert.Error(t, err)
}

func TestToICSUTC(t *testing.T) {
	in := time.Date(2025, 9, 6, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "20250906T150405Z", ToICSUTC(in))

	// Non-UTC instants are converted first.
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, "20250906T150405Z", ToICSUTC(in.In(loc)))
}
