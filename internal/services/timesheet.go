package services

import (
	"context"
	"errors"
	"fmt"

	"giro/internal/core"
	"giro/internal/storage"
)

// ErrSessionOpen is returned when clocking in on a date that already has an
// open session.
var ErrSessionOpen = errors.New("a session is already open for this date")

// ErrNoOpenSession is returned when clocking out with nothing open.
var ErrNoOpenSession = errors.New("no open session for this date")

// TimesheetService manages work sessions. At most one session per date may
// be open at a time; the database enforces the same rule with a partial
// unique index.
type TimesheetService struct {
	storage *storage.SQLiteRepository
}

func NewTimesheetService(storage *storage.SQLiteRepository) *TimesheetService {
	return &TimesheetService{storage: storage}
}

// ClockIn opens a session for the date.
func (s *TimesheetService) ClockIn(ctx context.Context, date core.Date, start core.Clock, notes string) (core.Session, error) {
	if _, err := s.storage.OpenSession(ctx, date); err == nil {
		return core.Session{}, ErrSessionOpen
	} else if !errors.Is(err, storage.ErrNotFound) {
		return core.Session{}, err
	}

	session, err := core.NewSession(date, start, notes)
	if err != nil {
		return core.Session{}, err
	}

	if err := s.storage.CreateSession(ctx, session); err != nil {
		return core.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// ClockOut closes the open session for the date. End times before the start
// are read as past midnight.
func (s *TimesheetService) ClockOut(ctx context.Context, date core.Date, end core.Clock, breakMinutes int) (core.Session, error) {
	if err := end.Validate(); err != nil {
		return core.Session{}, err
	}
	if breakMinutes < 0 {
		return core.Session{}, fmt.Errorf("%w: negative break", core.ErrInvalidClock)
	}

	session, err := s.storage.OpenSession(ctx, date)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Session{}, ErrNoOpenSession
	}
	if err != nil {
		return core.Session{}, err
	}

	if err := s.storage.CloseSession(ctx, session.ID, end, breakMinutes); err != nil {
		return core.Session{}, err
	}

	session.EndTime = end
	session.BreakMinutes = breakMinutes
	return session, nil
}

func (s *TimesheetService) Sessions(ctx context.Context) ([]core.Session, error) {
	return s.storage.ListSessions(ctx)
}

// Timesheet reports per-day and total worked minutes over all sessions.
func (s *TimesheetService) Timesheet(ctx context.Context) (map[string]int, int, error) {
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return nil, 0, err
	}
	return core.DailyWorkedMinutes(sessions), core.TotalWorkedMinutes(sessions), nil
}
