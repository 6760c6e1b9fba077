package timeutil

import "time"

const providerZone = "Europe/Warsaw"

// ProviderLocation returns the provider's reference time zone. When zone data
// is unavailable it falls back to fixed UTC+1, which ignores DST and is only
// an approximation of the real zone.
func ProviderLocation() *time.Location {
	loc, err := time.LoadLocation(providerZone)
	if err != nil {
		return time.FixedZone("CET", 3600)
	}
	return loc
}

// Window is a UTC instant range bounding one provider query.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the UTC range covering the local calendar day of date in
// loc as a half-open interval: local midnight to the next local midnight.
// The local-midnight computation is zone aware, so a DST transition shifts
// the UTC instants and the window may span 23 or 25 hours.
func DayWindow(date time.Time, loc *time.Location) Window {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return Window{Start: start.UTC(), End: end.UTC()}
}

// DayWindowMs is the inclusive variant of DayWindow: the end bound is pulled
// back one millisecond so queries that treat window_end inclusively do not
// pick up the first frame of the next day.
func DayWindowMs(date time.Time, loc *time.Location) Window {
	w := DayWindow(date, loc)
	w.End = w.End.Add(-time.Millisecond)
	return w
}

// FormatISO renders t as ISO-8601 UTC with seconds precision and a Z suffix,
// the exact shape the provider expects in window_start/window_end parameters.
func FormatISO(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}
