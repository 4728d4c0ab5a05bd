package http

import "net/http"

// handleListAlerts returns the maintenance alert definitions on their own,
// without the rest of the settings blob.
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.ledger.Settings(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSettingsPayload(cfg).Alerts)
}

// handleReplaceAlerts swaps the whole alert list while leaving the reserve
// percentages and goal untouched.
func (s *Server) handleReplaceAlerts(w http.ResponseWriter, r *http.Request) {
	var req []alertPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := s.ledger.Settings(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	cfg.Alerts = (settingsPayload{Alerts: req}).toSettings().Alerts
	if err := cfg.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.ledger.UpdateSettings(r.Context(), cfg); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toSettingsPayload(cfg).Alerts)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	cfg, err := s.ledger.Settings(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	kept := cfg.Alerts[:0:0]
	for _, a := range cfg.Alerts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(cfg.Alerts) {
		respondError(w, http.StatusNotFound, "alert not found")
		return
	}

	cfg.Alerts = kept
	if err := s.ledger.UpdateSettings(r.Context(), cfg); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
