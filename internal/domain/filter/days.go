package filter

import "time"

// Midnight returns local midnight of t's calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekendWindow returns the half-open [start, end) weekend window relative to
// now. On Saturday and Sunday the window starts today; otherwise it starts on
// the upcoming Saturday. It spans two calendar days.
func WeekendWindow(now time.Time) (time.Time, time.Time) {
	today := Midnight(now)
	days := 0
	if wd := now.Weekday(); wd != time.Sunday {
		days = int(time.Saturday - wd)
	}
	start := today.AddDate(0, 0, days)
	return start, start.AddDate(0, 0, 2)
}

// DayOf returns midnight of t's calendar day expressed in loc.
func DayOf(t time.Time, loc *time.Location) time.Time {
	return Midnight(t.In(loc))
}
