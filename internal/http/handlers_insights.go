package http

import (
	"net/http"

	"giro/internal/core"
)

// insightsContext is a single snapshot of everything an external advisor
// needs to reason about the ledger: totals, efficiency ratios, upcoming
// maintenance and outstanding balances.
type insightsContext struct {
	Summary          summaryPayload       `json:"summary"`
	Fuel             fuelMetricsPayload   `json:"fuel"`
	Maintenance      []alertStatusPayload `json:"maintenance"`
	PendingTotal     float64              `json:"pending_total"`
	IncomeByPayment  map[string]float64   `json:"income_by_payment"`
	ExpenseByPayment map[string]float64   `json:"expense_by_payment"`
	WorkedMinutes    int                  `json:"worked_minutes"`
	Settings         settingsPayload      `json:"settings"`
}

func (s *Server) handleInsightsContext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := s.ledger.ListEntries(ctx, core.Filter{})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	statuses, err := s.ledger.MaintenanceStatus(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	cfg, err := s.ledger.Settings(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	_, workedTotal, err := s.timesheet.Timesheet(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	fuel, err := s.ledger.FuelMetrics(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	maint := make([]alertStatusPayload, 0, len(statuses))
	for _, a := range statuses {
		maint = append(maint, toAlertStatusPayload(a))
	}

	out := insightsContext{
		Summary: toSummaryPayload(core.Summarize(entries)),
		Fuel: fuelMetricsPayload{
			CostPerKM:        fuel.CostPerKM,
			CostPerDelivery:  fuel.CostPerDelivery,
			KMPerLiter:       fuel.KMPerLiter,
			AvgPricePerLiter: fuel.AvgPricePerLiter,
			TotalLiters:      fuel.TotalLiters,
		},
		Maintenance:      maint,
		PendingTotal:     core.PendingTotal(entries),
		IncomeByPayment:  paymentTotals(core.IncomeByPayment(entries)),
		ExpenseByPayment: paymentTotals(core.ExpenseByPayment(entries)),
		WorkedMinutes:    workedTotal,
		Settings:         toSettingsPayload(cfg),
	}
	respondJSON(w, http.StatusOK, out)
}

func paymentTotals(in map[core.PaymentMethod]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		key := string(k)
		if key == "" {
			key = "unspecified"
		}
		out[key] += v
	}
	return out
}
