package service

import "time"

// All week arithmetic is Monday-first in UTC. A "week" is identified by
// its Monday; two dates are in the same week exactly when their Mondays
// are equal.

func midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// mondayOf returns the Monday of t's week, at midnight UTC.
func mondayOf(t time.Time) time.Time {
	d := midnight(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}

// withinBookingWindow reports whether a pass date is bookable: not before
// today, and within the current or the next week.
func withinBookingWindow(now, date time.Time) bool {
	date = midnight(date)
	if date.Before(midnight(now)) {
		return false
	}
	cur := mondayOf(now)
	dm := mondayOf(date)
	return dm.Equal(cur) || dm.Equal(cur.AddDate(0, 0, 7))
}

// rangeElapsed reports whether a same-day slot's time range has already
// passed. Future dates never count as elapsed; the comparison only
// matters for today.
func rangeElapsed(now, date time.Time, endHour int) bool {
	return midnight(date).Equal(midnight(now)) && endHour < now.UTC().Hour()
}
