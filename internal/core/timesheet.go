package core

import (
	"errors"

	"github.com/google/uuid"
)

// Session is one clock-in/clock-out work period. An empty EndTime means
// it is still open; the service layer permits at most one open session
// per date.
type Session struct {
	ID           string
	Date         Date
	StartTime    Clock
	EndTime      Clock
	BreakMinutes int
	Notes        string
}

// NewSession opens a work session starting now-ish at the given clock
// time.
func NewSession(date Date, start Clock, notes string) (Session, error) {
	if err := date.Validate(); err != nil {
		return Session{}, err
	}
	if err := start.Validate(); err != nil {
		return Session{}, err
	}
	return Session{
		ID:        uuid.NewString(),
		Date:      date,
		StartTime: start,
		Notes:     notes,
	}, nil
}

func (s Session) Open() bool { return s.EndTime == "" }

func (s Session) Validate() error {
	if s.ID == "" {
		return errors.New("missing session id")
	}
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if err := s.StartTime.Validate(); err != nil {
		return err
	}
	if !s.Open() {
		if err := s.EndTime.Validate(); err != nil {
			return err
		}
	}
	if s.BreakMinutes < 0 {
		return errors.New("negative break minutes")
	}
	return nil
}

// WorkedMinutes is the session's net duration. An end time numerically
// before the start means the session crossed midnight and gains a day.
// Breaks are subtracted and the result never goes below zero. Open
// sessions report zero; they count only once closed.
func (s Session) WorkedMinutes() (int, error) {
	if s.Open() {
		return 0, nil
	}
	start, err := s.StartTime.Minutes()
	if err != nil {
		return 0, err
	}
	end, err := s.EndTime.Minutes()
	if err != nil {
		return 0, err
	}
	d := end - start
	if d < 0 {
		d += 24 * 60
	}
	d -= s.BreakMinutes
	if d < 0 {
		d = 0
	}
	return d, nil
}

// DailyWorkedMinutes accumulates closed sessions into per-date totals,
// keyed by ISO date.
func DailyWorkedMinutes(sessions []Session) map[string]int {
	out := make(map[string]int)
	for _, s := range sessions {
		if s.Open() {
			continue
		}
		m, err := s.WorkedMinutes()
		if err != nil {
			continue
		}
		out[s.Date.ISO()] += m
	}
	return out
}

// TotalWorkedMinutes sums every closed session.
func TotalWorkedMinutes(sessions []Session) int {
	var total int
	for _, m := range DailyWorkedMinutes(sessions) {
		total += m
	}
	return total
}
