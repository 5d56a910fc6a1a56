package reminder

import (
	"strconv"
	"time"
)

// AlertKey identifies one alert: a task at its time of day on one calendar day.
type AlertKey struct {
	TaskID int64
	Time   string
	Day    string
}

// String is the member stored in a fired set for the key's day.
func (k AlertKey) String() string {
	return strconv.FormatInt(k.TaskID, 10) + "-" + k.Time
}

type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

var SystemClock Clock = ClockFunc(time.Now)
