package http

import (
	"net/http"

	"giro/internal/core"
)

type clockInRequest struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Notes string `json:"notes"`
}

type clockOutRequest struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	BreakMinutes int    `json:"break_minutes"`
}

func (s *Server) handleClockIn(w http.ResponseWriter, r *http.Request) {
	var req clockInRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	session, err := s.timesheet.ClockIn(r.Context(), date, core.Clock(req.Time), req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toSessionPayload(session))
}

func (s *Server) handleClockOut(w http.ResponseWriter, r *http.Request) {
	var req clockOutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	session, err := s.timesheet.ClockOut(r.Context(), date, core.Clock(req.Time), req.BreakMinutes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSessionPayload(session))
}

func (s *Server) handleTimesheet(w http.ResponseWriter, r *http.Request) {
	daily, total, err := s.timesheet.Timesheet(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"daily_minutes": daily,
		"total_minutes": total,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.timesheet.Sessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]sessionPayload, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionPayload(sess))
	}
	respondJSON(w, http.StatusOK, out)
}
