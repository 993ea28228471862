package progression

import "time"

// Clock abstracts wall time so tests can pin "today".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the real time.
var SystemClock Clock = systemClock{}

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Calendar maps instants to business days. A day starts at ResetHour in
// Location, so with a 4:00 reset, 03:59 still belongs to the previous day.
type Calendar struct {
	Clock     Clock
	Location  *time.Location
	ResetHour int
}

// NewCalendar builds a calendar, falling back to UTC and the system clock.
func NewCalendar(clock Clock, loc *time.Location, resetHour int) Calendar {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Clock: clock, Location: loc, ResetHour: resetHour}
}

// DayOf returns the business day t falls on.
func (c Calendar) DayOf(t time.Time) Date {
	return DateOf(t.In(c.Location).Add(-time.Duration(c.ResetHour) * time.Hour))
}

// Today is DayOf(now).
func (c Calendar) Today() Date {
	return c.DayOf(c.Clock.Now())
}
