// Package core is the financial computation engine: the ledger entry
// model, the constructors that split gross pay into reserve buckets, and
// the pure aggregation functions the rest of the application renders.
// Nothing in this package performs I/O or holds state; every function is
// a transformation over a caller-supplied snapshot.
package core

import (
	"errors"
	"math"
)

// Kind tags what a ledger entry represents. Income entries carry gross
// pay split into reserve buckets; fuel/food/maintenance entries are
// manual expenses holding the spend in the matching reserve field;
// odometer entries record a total distance reading and move no money.
type Kind string

const (
	KindIncome      Kind = "income"
	KindFuel        Kind = "fuel"
	KindFood        Kind = "food"
	KindMaintenance Kind = "maintenance"
	KindOdometer    Kind = "odometer"
)

// OdometerLabel marks odometer-closing entries in listings and exports.
const OdometerLabel = "KM Closing"

// PaymentMethod is how an entry was paid. The empty value means the user
// did not record one.
type PaymentMethod string

const (
	PayCash    PaymentMethod = "cash"
	PayInstant PaymentMethod = "instant" // instant bank transfer
	PayDebit   PaymentMethod = "debit"
	PayTab     PaymentMethod = "tab" // running tab, settled later
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidClock       = errors.New("invalid clock time")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidKind        = errors.New("invalid entry kind")
	ErrInvalidPayment     = errors.New("invalid payment method")
	ErrInvalidPercentages = errors.New("reserve percentages out of range")
	ErrOdometerRegression = errors.New("odometer reading below last known total")
)

// Entry is one ledger record in its flattened form, the shape that is
// stored and exported. The Kind tag makes the variant explicit; the
// reserve fields double as spend amounts on expense entries.
type Entry struct {
	ID    string
	Kind  Kind
	Date  Date
	Time  Clock
	Label string

	// Gross is positive only on income entries. For income the reserves
	// are the configured slices of Gross and Net is the remainder; for
	// expenses exactly one reserve field holds the spend and Net is its
	// negation; odometer closings keep all five at zero.
	Gross              float64
	FuelReserve        float64
	FoodReserve        float64
	MaintenanceReserve float64
	Net                float64

	Distance  float64 // km attributed to this entry
	FuelPrice float64 // price per liter observed at entry time
	Liters    float64 // liters purchased, fuel expenses only
	Odometer  float64 // total odometer reading, maintenance expenses and closings

	AlertID string // optional link to a maintenance alert

	Payment PaymentMethod
	Settled bool
}

func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindFuel, KindFood, KindMaintenance, KindOdometer:
		return true
	}
	return false
}

// IsExpense reports whether the kind is one of the three spend buckets.
func (k Kind) IsExpense() bool {
	return k == KindFuel || k == KindFood || k == KindMaintenance
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case "", PayCash, PayInstant, PayDebit, PayTab:
		return true
	}
	return false
}

func (e Entry) IsIncome() bool  { return e.Kind == KindIncome }
func (e Entry) IsExpense() bool { return e.Kind.IsExpense() }

// ExpenseAmount returns the spend recorded on an expense entry, zero for
// any other kind.
func (e Entry) ExpenseAmount() float64 {
	switch e.Kind {
	case KindFuel:
		return e.FuelReserve
	case KindFood:
		return e.FoodReserve
	case KindMaintenance:
		return e.MaintenanceReserve
	}
	return 0
}

func (e Entry) Validate() error {
	if e.ID == "" {
		return errors.New("missing entry id")
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Time != "" {
		if err := e.Time.Validate(); err != nil {
			return err
		}
	}
	if !e.Payment.Valid() {
		return ErrInvalidPayment
	}
	for _, v := range []float64{
		e.Gross, e.FuelReserve, e.FoodReserve, e.MaintenanceReserve,
		e.Net, e.Distance, e.FuelPrice, e.Liters, e.Odometer,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidAmount
		}
	}
	switch {
	case e.Kind == KindIncome:
		if e.Gross <= 0 {
			return ErrInvalidAmount
		}
	case e.Kind.IsExpense():
		if e.Gross != 0 || e.ExpenseAmount() <= 0 {
			return ErrInvalidAmount
		}
	case e.Kind == KindOdometer:
		if e.Gross != 0 || e.FuelReserve != 0 || e.FoodReserve != 0 ||
			e.MaintenanceReserve != 0 || e.Net != 0 {
			return ErrInvalidAmount
		}
		if e.Odometer <= 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// WithID returns a copy carrying the given id. Edits rebuild the entry
// from raw inputs and preserve only the original id through this.
func (e Entry) WithID(id string) Entry {
	e.ID = id
	return e
}
