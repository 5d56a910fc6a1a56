package component

import (
	"strings"
	"time"
)

const (
	layoutHourMinute = "15:04"
	layoutCanonical  = "15:04:05"
)

var ErrInvalidTime = &ValidationError{Message: "Invalid time format"}

// NormalizeTimeOfDay accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func NormalizeTimeOfDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(layoutHourMinute, s)
	if err != nil {
		t, err = time.Parse(layoutCanonical, s)
		if err != nil {
			return "", ErrInvalidTime
		}
	}
	return t.Format(layoutCanonical), nil
}

// HourMinute returns the HH:MM prefix of a canonical time of day.
func HourMinute(timeOfDay string) string {
	if len(timeOfDay) < 5 {
		return timeOfDay
	}
	return timeOfDay[:5]
}

// ClockMinute formats t the same way HourMinute does, in t's location.
func ClockMinute(t time.Time) string {
	return t.Format(layoutHourMinute)
}

// DayKey identifies the calendar day of t.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Poller timing shared by the browser script and the Go client.
const (
	ScanInterval = 15 * time.Second
	DeleteDelay  = 2 * time.Second
)
