package core

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// IncomeInput carries the raw user input for one delivery payout.
type IncomeInput struct {
	Gross     float64
	Date      Date
	Time      Clock
	Label     string // store name; defaults to "General"
	Distance  float64
	FuelPrice float64
	Payment   PaymentMethod
}

// NewIncomeEntry splits gross pay into the configured reserve slices and
// keeps the remainder as net. Cash income is settled on the spot; every
// other method starts out pending.
func NewIncomeEntry(in IncomeInput, cfg Settings) (Entry, error) {
	if !positiveFinite(in.Gross) {
		return Entry{}, ErrInvalidAmount
	}
	if err := cfg.Validate(); err != nil {
		return Entry{}, err
	}
	if err := in.Date.Validate(); err != nil {
		return Entry{}, err
	}
	if in.Time != "" {
		if err := in.Time.Validate(); err != nil {
			return Entry{}, err
		}
	}
	if !in.Payment.Valid() {
		return Entry{}, ErrInvalidPayment
	}
	if !nonNegativeFinite(in.Distance) || !nonNegativeFinite(in.FuelPrice) {
		return Entry{}, ErrInvalidAmount
	}

	label := strings.TrimSpace(in.Label)
	if label == "" {
		label = "General"
	}

	fuel := in.Gross * cfg.PercFuel
	food := in.Gross * cfg.PercFood
	maint := in.Gross * cfg.PercMaintenance

	return Entry{
		ID:                 uuid.NewString(),
		Kind:               KindIncome,
		Date:               in.Date,
		Time:               in.Time,
		Label:              label,
		Gross:              in.Gross,
		FuelReserve:        fuel,
		FoodReserve:        food,
		MaintenanceReserve: maint,
		Net:                in.Gross - fuel - food - maint,
		Distance:           in.Distance,
		FuelPrice:          in.FuelPrice,
		Payment:            in.Payment,
		Settled:            in.Payment == PayCash,
	}, nil
}

// ExpenseInput carries the raw user input for one manual expense.
type ExpenseInput struct {
	Amount      float64
	Kind        Kind // KindFuel, KindFood or KindMaintenance
	Date        Date
	Time        Clock
	Description string
	Odometer    float64 // maintenance expenses only
	Payment     PaymentMethod
	Liters      float64 // fuel expenses only
	AlertID     string  // maintenance alert this spend services, optional
}

// NewExpenseEntry records a spend against one reserve bucket. The amount
// lands in the bucket's reserve field with gross at zero, which is how
// the aggregation tells expenses apart; net is the negated amount.
func NewExpenseEntry(in ExpenseInput) (Entry, error) {
	if !positiveFinite(in.Amount) {
		return Entry{}, ErrInvalidAmount
	}
	if !in.Kind.IsExpense() {
		return Entry{}, ErrInvalidKind
	}
	if err := in.Date.Validate(); err != nil {
		return Entry{}, err
	}
	if in.Time != "" {
		if err := in.Time.Validate(); err != nil {
			return Entry{}, err
		}
	}
	if !in.Payment.Valid() {
		return Entry{}, ErrInvalidPayment
	}
	if !nonNegativeFinite(in.Odometer) || !nonNegativeFinite(in.Liters) {
		return Entry{}, ErrInvalidAmount
	}

	label := strings.TrimSpace(in.Description)
	if label == "" {
		label = "Extra expense"
	}

	e := Entry{
		ID:      uuid.NewString(),
		Kind:    in.Kind,
		Date:    in.Date,
		Time:    in.Time,
		Label:   label,
		Net:     -in.Amount,
		Payment: in.Payment,
		Settled: in.Payment == PayCash,
	}
	switch in.Kind {
	case KindFuel:
		e.FuelReserve = in.Amount
		e.Liters = in.Liters
	case KindFood:
		e.FoodReserve = in.Amount
	case KindMaintenance:
		e.MaintenanceReserve = in.Amount
		e.Odometer = in.Odometer
		e.AlertID = in.AlertID
	}
	return e, nil
}

// OdometerInput carries a total-odometer reading taken at day close.
type OdometerInput struct {
	TotalKM   float64
	Date      Date
	Time      Clock
	FuelPrice float64
}

// NewOdometerClosing derives the distance driven since the previous
// reading. The first-ever closing has nothing to diff against and records
// zero driven distance. A reading below the last known total clamps the
// distance to zero and reports ErrOdometerRegression alongside the still
// usable entry, so callers can flag the reading for review instead of
// silently guessing.
func NewOdometerClosing(in OdometerInput, lastKnownKM float64) (Entry, error) {
	if !positiveFinite(in.TotalKM) {
		return Entry{}, ErrInvalidAmount
	}
	if err := in.Date.Validate(); err != nil {
		return Entry{}, err
	}
	if in.Time != "" {
		if err := in.Time.Validate(); err != nil {
			return Entry{}, err
		}
	}
	if !nonNegativeFinite(in.FuelPrice) {
		return Entry{}, ErrInvalidAmount
	}

	e := Entry{
		ID:        uuid.NewString(),
		Kind:      KindOdometer,
		Date:      in.Date,
		Time:      in.Time,
		Label:     OdometerLabel,
		FuelPrice: in.FuelPrice,
		Odometer:  in.TotalKM,
	}
	if lastKnownKM > 0 {
		e.Distance = in.TotalKM - lastKnownKM
	}
	if e.Distance < 0 {
		e.Distance = 0
		return e, ErrOdometerRegression
	}
	return e, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func nonNegativeFinite(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
