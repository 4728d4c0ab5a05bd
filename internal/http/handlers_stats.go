package http

import (
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	sum, err := s.ledger.Summary(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSummaryPayload(sum))
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.DailyStats(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]dailyStatPayload, 0, len(stats))
	for _, d := range stats {
		out = append(out, dailyStatPayload{
			Date:    d.Date.ISO(),
			Summary: toSummaryPayload(d.Summary),
			GoalMet: d.GoalMet,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	weeks, err := s.ledger.WeeklyStats(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]weekPayload, 0, len(weeks))
	for _, wk := range weeks {
		out = append(out, weekPayload{
			Start:   wk.Start.ISO(),
			End:     wk.End.ISO(),
			Entries: wk.Entries,
			Summary: toSummaryPayload(wk.Summary),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleFuelMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.ledger.FuelMetrics(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, fuelMetricsPayload{
		CostPerKM:        m.CostPerKM,
		CostPerDelivery:  m.CostPerDelivery,
		KMPerLiter:       m.KMPerLiter,
		AvgPricePerLiter: m.AvgPricePerLiter,
		TotalLiters:      m.TotalLiters,
	})
}

func (s *Server) handleMaintenanceStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.ledger.MaintenanceStatus(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]alertStatusPayload, 0, len(statuses))
	for _, a := range statuses {
		out = append(out, toAlertStatusPayload(a))
	}
	respondJSON(w, http.StatusOK, out)
}
