package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"giro/internal/core"
	"giro/internal/export"
)

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := req.input()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entry, err := s.ledger.AddIncome(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toEntryPayload(entry))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := req.input()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entry, err := s.ledger.AddExpense(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toEntryPayload(entry))
}

func (s *Server) handleCreateOdometer(w http.ResponseWriter, r *http.Request) {
	var req odometerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := req.input()
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entry, regressed, err := s.ledger.CloseOdometer(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := map[string]any{"entry": toEntryPayload(entry)}
	if regressed {
		slog.WarnContext(r.Context(), "Odometer reading below last known total",
			"id", entry.ID, "total_km", in.TotalKM)
		resp["warning"] = core.ErrOdometerRegression.Error()
	}
	respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entries, err := s.ledger.ListEntries(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toEntryPayloads(entries))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.ledger.GetEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toEntryPayload(entry))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDateOrToday(req.Date)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var entry core.Entry
	switch kind := core.Kind(req.Kind); {
	case kind == core.KindIncome:
		entry, err = s.ledger.UpdateIncome(r.Context(), id, core.IncomeInput{
			Gross:     req.Gross,
			Date:      date,
			Time:      core.Clock(req.Time),
			Label:     req.Label,
			Distance:  req.Distance,
			FuelPrice: req.FuelPrice,
			Payment:   core.PaymentMethod(req.Payment),
		})
	case kind.IsExpense():
		entry, err = s.ledger.UpdateExpense(r.Context(), id, core.ExpenseInput{
			Amount:      req.Amount,
			Kind:        kind,
			Date:        date,
			Time:        core.Clock(req.Time),
			Description: req.Description,
			Odometer:    req.Odometer,
			Payment:     core.PaymentMethod(req.Payment),
			Liters:      req.Liters,
			AlertID:     req.AlertID,
		})
	default:
		respondError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("entries of kind %q cannot be edited", req.Kind))
		return
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toEntryPayload(entry))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSettleEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Settled bool `json:"settled"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	if err := s.ledger.SettleEntry(r.Context(), id, req.Settled); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "settled": req.Settled})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entries, err := s.ledger.ListEntries(r.Context(), f)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("giro-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteCSV(w, entries); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
	}
}
