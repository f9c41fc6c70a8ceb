// ABOUTME: Send-date arithmetic for sequence scheduling
// ABOUTME: Weekend shifting and business-hour normalization
package scheduler

import "time"

// DefaultSendHour is the local hour every scheduled send is pinned to.
const DefaultSendHour = 10

// ShiftOffWeekend moves a Saturday forward two days and a Sunday forward
// one day, so both land on the following Monday. Dates never move backward.
func ShiftOffWeekend(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, 2)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// AtHour pins the time-of-day to the given hour, keeping the date and
// location.
func AtHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

// SendDate computes the delivery slot for one step: start plus the step's
// relative delay, shifted off weekends, at the fixed send hour.
func SendDate(start time.Time, delayDays, hour int) time.Time {
	d := start.AddDate(0, 0, delayDays)
	d = ShiftOffWeekend(d)
	return AtHour(d, hour)
}
