package domain

import "time"

// DateKey returns a stable yyyymmdd identifier for the calendar day of t in
// loc. "Today" is always evaluated in the configured timezone so the daily
// window does not move with server locale.
func DateKey(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return y*10000 + int(m)*100 + d
}

// DayBounds returns the half-open interval [start, end) covering the
// calendar day of t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// LockKey folds a tier and a date key into a single serialization token for
// the exclusive scope lock. The encoding is collision-free because date keys
// stay below 10^8; the value is never interpreted as data.
func LockKey(tier Tier, dateKey int) int64 {
	return int64(tier)*100_000_000 + int64(dateKey)
}
