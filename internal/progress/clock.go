package progress

import (
	"time"
	_ "time/tzdata"
)

// DateLayout is the calendar date format stored in lastDailyResetDate.
const DateLayout = "2006-01-02"

// ReferenceTimezone pins every calendar computation. Daily rollover and
// elapsed days are evaluated in this zone regardless of server or user
// location.
const ReferenceTimezone = "Europe/Berlin"

var reference = mustLoadLocation(ReferenceTimezone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("progress: cannot load timezone " + name + ": " + err.Error())
	}
	return loc
}

// Location returns the reference timezone.
func Location() *time.Location { return reference }

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

var SystemClock Clock = ClockFunc(time.Now)

// CalendarDate formats t as a YYYY-MM-DD date in the reference timezone.
func CalendarDate(t time.Time) string {
	return t.In(reference).Format(DateLayout)
}

// DaysBetween counts whole calendar days from start to end, both taken as
// reference timezone dates. Negative when end is before start.
func DaysBetween(start, end time.Time) int {
	s, _ := time.Parse(DateLayout, CalendarDate(start))
	e, _ := time.Parse(DateLayout, CalendarDate(end))
	return int(e.Sub(s).Hours() / 24)
}
