package core

import (
	"errors"
	"math"
	"strings"
)

// MaintenanceAlert is a configured service reminder: a distance cadence
// and the odometer reading at the last service (zero means never
// serviced).
type MaintenanceAlert struct {
	ID          string
	Description string
	KMInterval  float64
	LastKM      float64
}

// Settings are the user-editable knobs. Every engine function takes them
// as an explicit parameter; there is no ambient configuration.
type Settings struct {
	PercFuel        float64 // fraction of gross routed to the fuel reserve
	PercFood        float64
	PercMaintenance float64
	DailyGoal       float64 // gross income threshold for a goal-met day
	LastFuelPrice   float64 // default for new entries
	LastTotalKM     float64 // last odometer closing, baseline for the next
	Alerts          []MaintenanceAlert
}

// DefaultSettings is the out-of-the-box configuration: 14% fuel, 8% food,
// 8% maintenance, a 250 daily goal and the three standard service
// reminders.
func DefaultSettings() Settings {
	return Settings{
		PercFuel:        0.14,
		PercFood:        0.08,
		PercMaintenance: 0.08,
		DailyGoal:       250,
		LastFuelPrice:   5.50,
		Alerts: []MaintenanceAlert{
			{ID: "oil", Description: "Oil Change", KMInterval: 10000},
			{ID: "tires", Description: "Tires", KMInterval: 40000},
			{ID: "brakes", Description: "Brakes", KMInterval: 20000},
		},
	}
}

func (s Settings) Validate() error {
	for _, p := range []float64{s.PercFuel, s.PercFood, s.PercMaintenance} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return ErrInvalidPercentages
		}
	}
	if s.PercFuel+s.PercFood+s.PercMaintenance > 1 {
		return ErrInvalidPercentages
	}
	if math.IsNaN(s.DailyGoal) || s.DailyGoal < 0 {
		return ErrInvalidAmount
	}
	for _, a := range s.Alerts {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (a MaintenanceAlert) Validate() error {
	if strings.TrimSpace(a.Description) == "" {
		return errors.New("empty alert description")
	}
	if math.IsNaN(a.KMInterval) || a.KMInterval <= 0 {
		return errors.New("alert km interval must be positive")
	}
	if math.IsNaN(a.LastKM) || a.LastKM < 0 {
		return errors.New("alert last km must not be negative")
	}
	return nil
}
