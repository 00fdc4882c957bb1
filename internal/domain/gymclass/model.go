package gymclass

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Weekday constants stored for the schedule grid.
var ValidWeekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Domain errors
var (
	ErrEmptyName      = errors.New("class name cannot be empty")
	ErrInvalidWeekday = errors.New("weekday must be a lowercase english day name")
	ErrInvalidTime    = errors.New("times must use HH:MM 24h format")
	ErrTimeOrder      = errors.New("start time must be before end time")
	ErrBadCapacity    = errors.New("capacity must be zero or positive")
)

// Class is a recurring scheduled class (spinning, yoga, ...) with an
// instructor and an optional booking capacity. Capacity zero means
// unlimited.
type Class struct {
	ID         string
	Name       string
	Instructor string
	Weekday    string // e.g. "monday"
	StartTime  string // "HH:MM" 24h
	EndTime    string // "HH:MM" 24h
	Capacity   int
	Active     bool
}

// Validate checks if the Class has valid data.
// PRE: Class struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (c *Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !isValidWeekday(c.Weekday) {
		return ErrInvalidWeekday
	}
	start, err := parseClock(c.StartTime)
	if err != nil {
		return ErrInvalidTime
	}
	end, err := parseClock(c.EndTime)
	if err != nil {
		return ErrInvalidTime
	}
	if !start.Before(end) {
		return ErrTimeOrder
	}
	if c.Capacity < 0 {
		return ErrBadCapacity
	}
	return nil
}

// DurationHours returns the scheduled length of the class in hours.
// PRE: StartTime and EndTime are valid HH:MM strings
func (c *Class) DurationHours() (float64, error) {
	start, err := parseClock(c.StartTime)
	if err != nil {
		return 0, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := parseClock(c.EndTime)
	if err != nil {
		return 0, fmt.Errorf("invalid end time: %w", err)
	}
	return end.Sub(start).Hours(), nil
}

// HasCapacityLimit returns true when bookings must be counted against a cap.
// INVARIANT: Class fields are not mutated
func (c *Class) HasCapacityLimit() bool {
	return c.Capacity > 0
}

func isValidWeekday(day string) bool {
	for _, d := range ValidWeekdays {
		if d == day {
			return true
		}
	}
	return false
}

func parseClock(s string) (time.Time, error) {
	return time.Parse("15:04", s)
}
