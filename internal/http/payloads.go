package http

import "giro/internal/core"

// entryPayload is the wire form of a ledger entry.
type entryPayload struct {
	ID                 string  `json:"id"`
	Kind               string  `json:"kind"`
	Date               string  `json:"date"`
	Time               string  `json:"time,omitempty"`
	Label              string  `json:"label"`
	Gross              float64 `json:"gross"`
	FuelReserve        float64 `json:"fuel_reserve"`
	FoodReserve        float64 `json:"food_reserve"`
	MaintenanceReserve float64 `json:"maintenance_reserve"`
	Net                float64 `json:"net"`
	Distance           float64 `json:"distance_km"`
	FuelPrice          float64 `json:"fuel_price"`
	Liters             float64 `json:"liters,omitempty"`
	Odometer           float64 `json:"odometer_km,omitempty"`
	AlertID            string  `json:"alert_id,omitempty"`
	Payment            string  `json:"payment,omitempty"`
	Settled            bool    `json:"settled"`
}

func toEntryPayload(e core.Entry) entryPayload {
	return entryPayload{
		ID:                 e.ID,
		Kind:               string(e.Kind),
		Date:               e.Date.ISO(),
		Time:               string(e.Time),
		Label:              e.Label,
		Gross:              e.Gross,
		FuelReserve:        e.FuelReserve,
		FoodReserve:        e.FoodReserve,
		MaintenanceReserve: e.MaintenanceReserve,
		Net:                e.Net,
		Distance:           e.Distance,
		FuelPrice:          e.FuelPrice,
		Liters:             e.Liters,
		Odometer:           e.Odometer,
		AlertID:            e.AlertID,
		Payment:            string(e.Payment),
		Settled:            e.Settled,
	}
}

func toEntryPayloads(entries []core.Entry) []entryPayload {
	out := make([]entryPayload, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryPayload(e))
	}
	return out
}

type summaryPayload struct {
	TotalGross          float64 `json:"total_gross"`
	TotalNet            float64 `json:"total_net"`
	ReservedFuel        float64 `json:"reserved_fuel"`
	ReservedFood        float64 `json:"reserved_food"`
	ReservedMaintenance float64 `json:"reserved_maintenance"`
	SpentFuel           float64 `json:"spent_fuel"`
	SpentFood           float64 `json:"spent_food"`
	SpentMaintenance    float64 `json:"spent_maintenance"`
	TotalFees           float64 `json:"total_fees"`
	TotalKM             float64 `json:"total_km"`
	TotalLiters         float64 `json:"total_liters"`
}

func toSummaryPayload(s core.Summary) summaryPayload {
	return summaryPayload{
		TotalGross:          s.TotalGross,
		TotalNet:            s.TotalNet,
		ReservedFuel:        s.ReservedFuel,
		ReservedFood:        s.ReservedFood,
		ReservedMaintenance: s.ReservedMaintenance,
		SpentFuel:           s.SpentFuel,
		SpentFood:           s.SpentFood,
		SpentMaintenance:    s.SpentMaintenance,
		TotalFees:           s.TotalFees,
		TotalKM:             s.TotalKM,
		TotalLiters:         s.TotalLiters,
	}
}

type dailyStatPayload struct {
	Date    string         `json:"date"`
	Summary summaryPayload `json:"summary"`
	GoalMet bool           `json:"goal_met"`
}

type weekPayload struct {
	Start   string         `json:"start"`
	End     string         `json:"end"`
	Entries int            `json:"entries"`
	Summary summaryPayload `json:"summary"`
}

type fuelMetricsPayload struct {
	CostPerKM        float64 `json:"cost_per_km"`
	CostPerDelivery  float64 `json:"cost_per_delivery"`
	KMPerLiter       float64 `json:"km_per_liter"`
	AvgPricePerLiter float64 `json:"avg_price_per_liter"`
	TotalLiters      float64 `json:"total_liters"`
}

type alertStatusPayload struct {
	ID              string  `json:"id"`
	Description     string  `json:"description"`
	KMInterval      float64 `json:"km_interval"`
	LastServiceKM   float64 `json:"last_service_km"`
	NextServiceKM   float64 `json:"next_service_km"`
	KMRemaining     float64 `json:"km_remaining"`
	ProgressPercent float64 `json:"progress_percent"`
	Urgent          bool    `json:"urgent"`
	EstimatedDays   int     `json:"estimated_days,omitempty"`
	EstimatedDate   string  `json:"estimated_date,omitempty"`
	HasEstimate     bool    `json:"has_estimate"`
}

func toAlertStatusPayload(a core.AlertStatus) alertStatusPayload {
	p := alertStatusPayload{
		ID:              a.Alert.ID,
		Description:     a.Alert.Description,
		KMInterval:      a.Alert.KMInterval,
		LastServiceKM:   a.LastServiceKM,
		NextServiceKM:   a.NextServiceKM,
		KMRemaining:     a.KMRemaining,
		ProgressPercent: a.ProgressPercent,
		Urgent:          a.Urgent,
		HasEstimate:     a.HasEstimate,
	}
	if a.HasEstimate {
		p.EstimatedDays = a.EstimatedDays
		p.EstimatedDate = a.EstimatedDate.ISO()
	}
	return p
}

type sessionPayload struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time,omitempty"`
	BreakMinutes int    `json:"break_minutes"`
	Notes        string `json:"notes,omitempty"`
	Open         bool   `json:"open"`
}

func toSessionPayload(s core.Session) sessionPayload {
	return sessionPayload{
		ID:           s.ID,
		Date:         s.Date.ISO(),
		StartTime:    string(s.StartTime),
		EndTime:      string(s.EndTime),
		BreakMinutes: s.BreakMinutes,
		Notes:        s.Notes,
		Open:         s.Open(),
	}
}

type alertPayload struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	KMInterval  float64 `json:"km_interval"`
	LastKM      float64 `json:"last_km"`
}

type settingsPayload struct {
	PercFuel        float64        `json:"perc_fuel"`
	PercFood        float64        `json:"perc_food"`
	PercMaintenance float64        `json:"perc_maintenance"`
	DailyGoal       float64        `json:"daily_goal"`
	LastFuelPrice   float64        `json:"last_fuel_price"`
	LastTotalKM     float64        `json:"last_total_km"`
	Alerts          []alertPayload `json:"alerts"`
}

func toSettingsPayload(cfg core.Settings) settingsPayload {
	p := settingsPayload{
		PercFuel:        cfg.PercFuel,
		PercFood:        cfg.PercFood,
		PercMaintenance: cfg.PercMaintenance,
		DailyGoal:       cfg.DailyGoal,
		LastFuelPrice:   cfg.LastFuelPrice,
		LastTotalKM:     cfg.LastTotalKM,
		Alerts:          make([]alertPayload, 0, len(cfg.Alerts)),
	}
	for _, a := range cfg.Alerts {
		p.Alerts = append(p.Alerts, alertPayload{
			ID:          a.ID,
			Description: a.Description,
			KMInterval:  a.KMInterval,
			LastKM:      a.LastKM,
		})
	}
	return p
}

func (p settingsPayload) toSettings() core.Settings {
	cfg := core.Settings{
		PercFuel:        p.PercFuel,
		PercFood:        p.PercFood,
		PercMaintenance: p.PercMaintenance,
		DailyGoal:       p.DailyGoal,
		LastFuelPrice:   p.LastFuelPrice,
		LastTotalKM:     p.LastTotalKM,
	}
	for _, a := range p.Alerts {
		cfg.Alerts = append(cfg.Alerts, core.MaintenanceAlert{
			ID:          a.ID,
			Description: a.Description,
			KMInterval:  a.KMInterval,
			LastKM:      a.LastKM,
		})
	}
	return cfg
}
