package accounting

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderDate(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		in   string
		want time.Time
	}{
		{"06.10.2026", time.Date(2026, 10, 6, 0, 0, 0, 0, loc)},
		{"06.10.2026 14:30", time.Date(2026, 10, 6, 14, 30, 0, 0, loc)},
		{"06.10.2026, 14:30:15", time.Date(2026, 10, 6, 14, 30, 15, 0, loc)},
		{"2026-10-06", time.Date(2026, 10, 6, 0, 0, 0, 0, loc)},
		{"2026-10-06T14:30:00", time.Date(2026, 10, 6, 14, 30, 0, 0, loc)},
		{"2026-10-06T14:30:00.250Z", time.Date(2026, 10, 6, 14, 30, 0, 250e6, loc)},
		{"2026-10-06T16:30:00+02:00", time.Date(2026, 10, 6, 14, 30, 0, 0, loc)},
	}
	for _, tt := range tests {
		got, err := ParseOrderDate(tt.in, loc)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %s", tt.in, got)
	}

	for _, bad := range []string{"", "yesterday", "32.13.2026", "2026/10/06"} {
		_, err := ParseOrderDate(bad, loc)
		assert.ErrorIs(t, err, ErrMalformedDate, bad)
	}
}

func TestWeekKeyOf(t *testing.T) {
	monday := WeekKey{Year: 2026, Month: time.October, Day: 5}
	for day := 5; day <= 11; day++ {
		at := time.Date(2026, 10, day, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, monday, WeekKeyOf(at), at.Weekday().String())
	}
	assert.Equal(t, WeekKey{Year: 2026, Month: time.October, Day: 12}, WeekKeyOf(time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)))
	// weeks crossing a year boundary keep the Monday's year
	assert.Equal(t, WeekKey{Year: 2025, Month: time.December, Day: 29}, WeekKeyOf(time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)))
}

func TestWeekKeyBounds(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// summer time starts on Sunday 2026-03-29
	key := WeekKey{Year: 2026, Month: time.March, Day: 23}
	assert.Equal(t, time.Date(2026, 3, 23, 0, 0, 0, 0, berlin), key.Start(berlin))
	assert.Equal(t, time.Date(2026, 3, 29, 23, 59, 59, 999e6, berlin), key.End(berlin))
	assert.Equal(t, time.Date(2026, 4, 3, 23, 59, 59, 999e6, berlin), key.GraceDeadline(berlin, GracePeriodDays))

	assert.True(t, key.Contains(time.Date(2026, 3, 29, 23, 0, 0, 0, berlin), berlin))
	assert.False(t, key.Contains(time.Date(2026, 3, 30, 0, 0, 0, 0, berlin), berlin))
	assert.Equal(t, WeekKey{Year: 2026, Month: time.March, Day: 30}, key.Next())
}

func TestWeekKeyText(t *testing.T) {
	key, err := ParseWeekKey("2026-10-08")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-05", key.String())

	var decoded WeekKey
	require.NoError(t, decoded.UnmarshalText([]byte("2026-10-05")))
	assert.Equal(t, key, decoded)

	_, err = ParseWeekKey("05.10.2026")
	assert.Error(t, err)

	assert.True(t, WeekKey{Year: 2025, Month: 12, Day: 29}.Before(key))
	assert.False(t, key.Before(key))
}
