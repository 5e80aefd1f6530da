package main

import (
	"time"

	"github.com/scmhub/calendar"
)

// Scheduler decides when the recorder is inside a trading session. There is
// no public BYMA holiday calendar in the library, so NYSE stands in; the
// overlap covers all local trading days in practice.
type Scheduler struct {
	openHour  int
	closeHour int
	location  *time.Location
	cal       *calendar.Calendar
	now       func() time.Time
}

// NewScheduler creates a scheduler for the given session window and timezone
func NewScheduler(openHour, closeHour int, timezone string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Scheduler{
		openHour:  openHour,
		closeHour: closeHour,
		location:  loc,
		cal:       calendar.XNYS(),
		now:       time.Now,
	}
}

// InSession reports whether the current time falls inside the session window
// on a business day.
func (s *Scheduler) InSession() bool {
	now := s.now().In(s.location)
	if !s.cal.IsBusinessDay(now) {
		return false
	}
	return now.Hour() >= s.openHour && now.Hour() < s.closeHour
}

// TodayDate returns today's date in YYYY-MM-DD format in the configured timezone
func (s *Scheduler) TodayDate() string {
	return s.now().In(s.location).Format("2006-01-02")
}

// Location returns the scheduler's timezone location
func (s *Scheduler) Location() *time.Location {
	return s.location
}
