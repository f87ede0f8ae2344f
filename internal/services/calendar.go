package services

import (
	"time"

	"github.com/dutyroster/schedule-backend/pkg/validator"
)

// AllDates is the date keyword selecting completion history across every day
const AllDates = "all"

// Calendar decides what "today" is for the schedule
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar creates a calendar in the given zone; nil means the server's local zone
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc, now: time.Now}
}

// Today returns the current date as YYYY-MM-DD
func (c *Calendar) Today() string {
	return c.now().In(c.loc).Format(validator.DateLayout)
}

// DaysAgo returns the date n days before today as YYYY-MM-DD
func (c *Calendar) DaysAgo(n int) string {
	return c.now().In(c.loc).AddDate(0, 0, -n).Format(validator.DateLayout)
}

// resolveDate returns today for an empty date and validates anything else
func (c *Calendar) resolveDate(date string) (string, error) {
	if date == "" {
		return c.Today(), nil
	}
	valid, err := validator.NewScheduleValidator().ValidateDate(date)
	if err != nil {
		return "", validationError("invalid date %q: must be YYYY-MM-DD", date)
	}
	return valid, nil
}
