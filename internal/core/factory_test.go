package core

import (
	"errors"
	"math"
	"testing"
)

const tol = 1e-9

func testSettings() Settings {
	return Settings{
		PercFuel:        0.14,
		PercFood:        0.08,
		PercMaintenance: 0.08,
		DailyGoal:       250,
	}
}

func TestNewIncomeEntrySplit(t *testing.T) {
	e, err := NewIncomeEntry(IncomeInput{
		Gross:   100,
		Date:    NewDate(2024, 1, 1),
		Time:    "12:00",
		Label:   "Store",
		Payment: PayCash,
	}, testSettings())
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.FuelReserve != 14 || e.FoodReserve != 8 || e.MaintenanceReserve != 8 {
		t.Fatalf("reserves = %v/%v/%v, want 14/8/8", e.FuelReserve, e.FoodReserve, e.MaintenanceReserve)
	}
	if e.Net != 70 {
		t.Fatalf("net = %v, want 70", e.Net)
	}
	if e.Kind != KindIncome {
		t.Fatalf("kind = %v", e.Kind)
	}
	if !e.Settled {
		t.Fatalf("cash income must be settled at creation")
	}
	if e.ID == "" {
		t.Fatalf("missing id")
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("entry does not validate: %v", err)
	}
}

func TestIncomeReserveIdentity(t *testing.T) {
	for _, gross := range []float64{0.01, 37.77, 100, 1234.56, 999999.99} {
		e, err := NewIncomeEntry(IncomeInput{
			Gross: gross,
			Date:  NewDate(2024, 3, 15),
			Time:  "08:30",
		}, testSettings())
		if err != nil {
			t.Fatalf("gross %v: %v", gross, err)
		}
		sum := e.FuelReserve + e.FoodReserve + e.MaintenanceReserve + e.Net
		if math.Abs(sum-e.Gross) > tol {
			t.Fatalf("gross %v: reserves+net = %v, want %v", gross, sum, e.Gross)
		}
		if math.Abs((e.FuelReserve+e.FoodReserve+e.MaintenanceReserve)-(e.Gross-e.Net)) > tol {
			t.Fatalf("gross %v: reserve sum mismatch", gross)
		}
	}
}

func TestIncomeDefaultsLabel(t *testing.T) {
	e, err := NewIncomeEntry(IncomeInput{Gross: 10, Date: NewDate(2024, 1, 1), Label: "  "}, testSettings())
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if e.Label != "General" {
		t.Fatalf("label = %q, want General", e.Label)
	}
	if e.Settled {
		t.Fatalf("non-cash income must start pending")
	}
}

func TestIncomeRejectsBadInput(t *testing.T) {
	cases := []IncomeInput{
		{Gross: 0, Date: NewDate(2024, 1, 1)},
		{Gross: -5, Date: NewDate(2024, 1, 1)},
		{Gross: math.NaN(), Date: NewDate(2024, 1, 1)},
		{Gross: math.Inf(1), Date: NewDate(2024, 1, 1)},
		{Gross: 10},                                                  // zero date
		{Gross: 10, Date: NewDate(2024, 1, 1), Time: "25:00"},        // bad clock
		{Gross: 10, Date: NewDate(2024, 1, 1), Payment: "check"},     // unknown method
		{Gross: 10, Date: NewDate(2024, 1, 1), Distance: -3},         // negative km
		{Gross: 10, Date: NewDate(2024, 1, 1), FuelPrice: math.NaN()},
	}
	for i, in := range cases {
		if _, err := NewIncomeEntry(in, testSettings()); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestIncomeRejectsBadSettings(t *testing.T) {
	bad := testSettings()
	bad.PercFuel = 1.5
	if _, err := NewIncomeEntry(IncomeInput{Gross: 10, Date: NewDate(2024, 1, 1)}, bad); !errors.Is(err, ErrInvalidPercentages) {
		t.Fatalf("expected ErrInvalidPercentages, got %v", err)
	}
}

func TestNewExpenseEntryBuckets(t *testing.T) {
	cases := []struct {
		kind  Kind
		check func(t *testing.T, e Entry)
	}{
		{KindFuel, func(t *testing.T, e Entry) {
			if e.FuelReserve != 50 || e.FoodReserve != 0 || e.MaintenanceReserve != 0 {
				t.Fatalf("fuel buckets = %v/%v/%v", e.FuelReserve, e.FoodReserve, e.MaintenanceReserve)
			}
			if e.Liters != 10.5 {
				t.Fatalf("liters = %v, want 10.5", e.Liters)
			}
		}},
		{KindFood, func(t *testing.T, e Entry) {
			if e.FoodReserve != 50 || e.FuelReserve != 0 || e.MaintenanceReserve != 0 {
				t.Fatalf("food buckets = %v/%v/%v", e.FuelReserve, e.FoodReserve, e.MaintenanceReserve)
			}
			if e.Liters != 0 {
				t.Fatalf("liters must be dropped for non-fuel expenses, got %v", e.Liters)
			}
		}},
		{KindMaintenance, func(t *testing.T, e Entry) {
			if e.MaintenanceReserve != 50 {
				t.Fatalf("maintenance bucket = %v", e.MaintenanceReserve)
			}
			if e.Odometer != 42000 {
				t.Fatalf("odometer = %v, want 42000", e.Odometer)
			}
		}},
	}
	for _, tc := range cases {
		e, err := NewExpenseEntry(ExpenseInput{
			Amount:      50,
			Kind:        tc.kind,
			Date:        NewDate(2024, 2, 2),
			Time:        "09:15",
			Description: "test spend",
			Odometer:    42000,
			Liters:      10.5,
		})
		if err != nil {
			t.Fatalf("%s: %v", tc.kind, err)
		}
		if e.Gross != 0 {
			t.Fatalf("%s: gross = %v, want 0", tc.kind, e.Gross)
		}
		if e.Net != -50 {
			t.Fatalf("%s: net = %v, want -50", tc.kind, e.Net)
		}
		if err := e.Validate(); err != nil {
			t.Fatalf("%s: entry does not validate: %v", tc.kind, err)
		}
		tc.check(t, e)
	}
}

func TestExpenseRejectsBadInput(t *testing.T) {
	cases := []ExpenseInput{
		{Amount: 0, Kind: KindFuel, Date: NewDate(2024, 1, 1)},
		{Amount: -1, Kind: KindFood, Date: NewDate(2024, 1, 1)},
		{Amount: math.Inf(-1), Kind: KindFood, Date: NewDate(2024, 1, 1)},
		{Amount: 10, Kind: KindIncome, Date: NewDate(2024, 1, 1)},   // not an expense kind
		{Amount: 10, Kind: KindOdometer, Date: NewDate(2024, 1, 1)}, // not an expense kind
		{Amount: 10, Kind: KindFuel},                                // zero date
	}
	for i, in := range cases {
		if _, err := NewExpenseEntry(in); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestOdometerClosing(t *testing.T) {
	e, err := NewOdometerClosing(OdometerInput{
		TotalKM: 50240,
		Date:    NewDate(2024, 5, 5),
		Time:    "19:00",
	}, 50000)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if e.Distance != 240 {
		t.Fatalf("distance = %v, want 240", e.Distance)
	}
	if e.Odometer != 50240 {
		t.Fatalf("odometer = %v, want 50240", e.Odometer)
	}
	if e.Label != OdometerLabel {
		t.Fatalf("label = %q", e.Label)
	}
	if e.Gross != 0 || e.Net != 0 || e.FuelReserve != 0 {
		t.Fatalf("closing must carry no money")
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("entry does not validate: %v", err)
	}
}

func TestOdometerFirstClosingZeroDistance(t *testing.T) {
	e, err := NewOdometerClosing(OdometerInput{TotalKM: 1234, Date: NewDate(2024, 1, 1)}, 0)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if e.Distance != 0 {
		t.Fatalf("first closing distance = %v, want 0", e.Distance)
	}
}

func TestOdometerRegressionClampsAndWarns(t *testing.T) {
	e, err := NewOdometerClosing(OdometerInput{TotalKM: 4000, Date: NewDate(2024, 1, 1)}, 5000)
	if !errors.Is(err, ErrOdometerRegression) {
		t.Fatalf("expected ErrOdometerRegression, got %v", err)
	}
	if e.Distance != 0 {
		t.Fatalf("distance = %v, want clamped 0", e.Distance)
	}
	if e.Odometer != 4000 {
		t.Fatalf("entry must still carry the reading, got %v", e.Odometer)
	}
}

func TestWithIDPreservesEverythingElse(t *testing.T) {
	e, err := NewExpenseEntry(ExpenseInput{Amount: 5, Kind: KindFood, Date: NewDate(2024, 1, 1)})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	re := e.WithID("fixed-id")
	if re.ID != "fixed-id" {
		t.Fatalf("id = %q", re.ID)
	}
	re.ID = e.ID
	if re != e {
		t.Fatalf("WithID changed more than the id")
	}
}
