package core

import (
	"fmt"
	"time"
)

// Date is a calendar date in the user's local frame. Only the
// year/month/day parts are meaningful; the wrapped time is always
// midnight UTC so equal dates compare equal.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the date in YYYY-MM-DD form. Dates in this form compare
// correctly as strings, which the grouping functions rely on.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// StartOfWeek returns the Monday of the week containing d. A Sunday
// counts as day seven of the preceding week.
func (d Date) StartOfWeek() Date {
	wd := int(d.Weekday())
	if wd == 0 {
		return d.AddDays(-6)
	}
	return d.AddDays(-(wd - 1))
}

// Clock is a time of day in 24-hour "HH:MM" form.
type Clock string

func (c Clock) Validate() error {
	_, err := c.Minutes()
	return err
}

// Minutes returns the clock time as minutes since midnight.
func (c Clock) Minutes() (int, error) {
	t, err := time.Parse("15:04", string(c))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, string(c))
	}
	return t.Hour()*60 + t.Minute(), nil
}
