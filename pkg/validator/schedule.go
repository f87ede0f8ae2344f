package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the calendar date format used for assignment and completion dates
const DateLayout = "2006-01-02"

// MaxNameLength bounds guest first and last names
const MaxNameLength = 100

var (
	// ErrInvalidDate indicates a date is not a real YYYY-MM-DD calendar date
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

	// ErrInvalidTime indicates a time of day is not HH:MM on a 24-hour clock
	ErrInvalidTime = errors.New("time must be in HH:MM format (00:00-23:59)")

	// ErrEmptyName indicates a name is blank after trimming
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrNameTooLong indicates a name exceeds MaxNameLength characters
	ErrNameTooLong = fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
)

// timeRegex accepts H:MM and HH:MM
var timeRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// ScheduleValidator validates the scalar inputs of the schedule API
type ScheduleValidator struct{}

// NewScheduleValidator creates a new validator instance
func NewScheduleValidator() *ScheduleValidator {
	return &ScheduleValidator{}
}

// ValidateDate checks a YYYY-MM-DD date and returns it unchanged
func (v *ScheduleValidator) ValidateDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	parsed, err := time.Parse(DateLayout, date)
	if err != nil || parsed.Format(DateLayout) != date {
		return "", ErrInvalidDate
	}
	return date, nil
}

// ValidateTime checks a time of day and returns it zero-padded as HH:MM.
// An empty value is returned as empty (no target time).
func (v *ScheduleValidator) ValidateTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	m := timeRegex.FindStringSubmatch(value)
	if m == nil {
		return "", ErrInvalidTime
	}
	if len(m[1]) == 1 {
		m[1] = "0" + m[1]
	}
	return m[1] + ":" + m[2], nil
}

// ValidateName trims a person's name and checks it is present and bounded
func (v *ScheduleValidator) ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// IsValidDate is a convenience method that returns true if the date is valid
func (v *ScheduleValidator) IsValidDate(date string) bool {
	_, err := v.ValidateDate(date)
	return err == nil
}
