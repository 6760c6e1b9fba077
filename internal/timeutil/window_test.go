package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warsaw(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skip("zone data unavailable")
	}
	return loc
}

func TestDayWindowAdjacency(t *testing.T) {
	loc := ProviderLocation()
	days := []time.Time{
		time.Date(2025, 10, 13, 12, 0, 0, 0, loc),
		time.Date(2025, 3, 29, 12, 0, 0, 0, loc), // day before spring forward
		time.Date(2025, 3, 30, 12, 0, 0, 0, loc), // spring forward
		time.Date(2025, 10, 25, 12, 0, 0, 0, loc),
		time.Date(2025, 10, 26, 12, 0, 0, 0, loc), // fall back
		time.Date(2025, 12, 31, 12, 0, 0, 0, loc), // year boundary
	}
	for _, day := range days {
		w := DayWindow(day, loc)
		next := DayWindow(day.AddDate(0, 0, 1), loc)
		assert.True(t, w.End.Equal(next.Start), "gap or overlap at %s", day.Format("2006-01-02"))
	}
}

func TestDayWindowDSTSpringForward(t *testing.T) {
	loc := warsaw(t)

	// 2025-03-30: clocks jump 02:00 -> 03:00, the local day is 23 hours.
	w := DayWindow(time.Date(2025, 3, 30, 12, 0, 0, 0, loc), loc)
	require.True(t, w.Start.Equal(time.Date(2025, 3, 29, 23, 0, 0, 0, time.UTC)))
	require.True(t, w.End.Equal(time.Date(2025, 3, 30, 22, 0, 0, 0, time.UTC)))
	assert.Equal(t, 23*time.Hour, w.End.Sub(w.Start))
}

func TestDayWindowDSTFallBack(t *testing.T) {
	loc := warsaw(t)

	// 2025-10-26: clocks fall back 03:00 -> 02:00, the local day is 25 hours.
	w := DayWindow(time.Date(2025, 10, 26, 12, 0, 0, 0, loc), loc)
	require.True(t, w.Start.Equal(time.Date(2025, 10, 25, 22, 0, 0, 0, time.UTC)))
	require.True(t, w.End.Equal(time.Date(2025, 10, 26, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 25*time.Hour, w.End.Sub(w.Start))
}

func TestDayWindowMsEndsOneMillisecondEarly(t *testing.T) {
	loc := ProviderLocation()
	day := time.Date(2025, 10, 13, 12, 0, 0, 0, loc)

	exclusive := DayWindow(day, loc)
	inclusive := DayWindowMs(day, loc)

	assert.True(t, inclusive.Start.Equal(exclusive.Start))
	assert.Equal(t, -time.Millisecond, inclusive.End.Sub(exclusive.End))
}

func TestDayWindowIdempotent(t *testing.T) {
	loc := ProviderLocation()
	day := time.Date(2025, 10, 13, 23, 45, 0, 0, loc)

	first := DayWindow(day, loc)
	second := DayWindow(day, loc)
	assert.Equal(t, first, second)
}

func TestFormatISO(t *testing.T) {
	loc := warsaw(t)

	instant := time.Date(2025, 10, 13, 1, 30, 45, 987654321, loc)
	assert.Equal(t, "2025-10-12T23:30:45Z", FormatISO(instant))

	// Already UTC, no fractional seconds to drop.
	assert.Equal(t, "2025-10-13T00:00:00Z", FormatISO(time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)))
}
