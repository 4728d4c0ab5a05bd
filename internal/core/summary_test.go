package core

import (
	"math"
	"testing"
)

func mustIncome(t *testing.T, gross float64, date Date, pay PaymentMethod) Entry {
	t.Helper()
	e, err := NewIncomeEntry(IncomeInput{Gross: gross, Date: date, Payment: pay}, testSettings())
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	return e
}

func mustExpense(t *testing.T, amount float64, kind Kind, date Date) Entry {
	t.Helper()
	e, err := NewExpenseEntry(ExpenseInput{Amount: amount, Kind: kind, Date: date})
	if err != nil {
		t.Fatalf("expense: %v", err)
	}
	return e
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) {
		t.Fatalf("empty summary = %+v, want all zero", s)
	}
}

func TestSummarizeReservesAndSpend(t *testing.T) {
	entries := []Entry{
		mustIncome(t, 100, NewDate(2024, 1, 1), PayCash),
		mustExpense(t, 10, KindFood, NewDate(2024, 1, 1)),
	}
	s := Summarize(entries)
	if s.TotalGross != 100 {
		t.Fatalf("gross = %v", s.TotalGross)
	}
	if s.ReservedFuel != 14 || s.ReservedFood != 8 || s.ReservedMaintenance != 8 {
		t.Fatalf("reserved = %v/%v/%v", s.ReservedFuel, s.ReservedFood, s.ReservedMaintenance)
	}
	if s.SpentFood != 10 {
		t.Fatalf("spent food = %v", s.SpentFood)
	}
	// Food overshoots its reserve by 2, so fees are reserves plus 2.
	wantFees := 30.0 + 2.0
	if math.Abs(s.TotalFees-wantFees) > tol {
		t.Fatalf("fees = %v, want %v", s.TotalFees, wantFees)
	}
	if math.Abs(s.TotalNet-(100-wantFees)) > tol {
		t.Fatalf("net = %v, want %v", s.TotalNet, 100-wantFees)
	}
}

func TestSummarizeExcessSpendPolicy(t *testing.T) {
	// Income reserves 14 for fuel; a 20 fuel expense overshoots by 6.
	entries := []Entry{
		mustIncome(t, 100, NewDate(2024, 1, 1), PayCash),
		mustExpense(t, 20, KindFuel, NewDate(2024, 1, 2)),
	}
	s := Summarize(entries)
	if s.SpentFuel != 20 {
		t.Fatalf("spent fuel = %v, want 20", s.SpentFuel)
	}
	reserved := s.ReservedFuel + s.ReservedFood + s.ReservedMaintenance
	if math.Abs(s.TotalFees-(reserved+6)) > tol {
		t.Fatalf("fees = %v, want reserved+6 = %v", s.TotalFees, reserved+6)
	}
	if math.Abs(s.TotalNet-(s.TotalGross-s.TotalFees)) > tol {
		t.Fatalf("net = %v, want gross-fees", s.TotalNet)
	}
}

func TestSummarizeWithinReserveNoExcess(t *testing.T) {
	entries := []Entry{
		mustIncome(t, 100, NewDate(2024, 1, 1), PayCash),
		mustExpense(t, 5, KindFuel, NewDate(2024, 1, 2)),
	}
	s := Summarize(entries)
	if math.Abs(s.TotalFees-30) > tol {
		t.Fatalf("fees = %v, want reserves only", s.TotalFees)
	}
	if math.Abs(s.TotalNet-70) > tol {
		t.Fatalf("net = %v, want 70", s.TotalNet)
	}
}

func TestSummarizeKMAndLiters(t *testing.T) {
	inc := mustIncome(t, 50, NewDate(2024, 1, 1), PayCash)
	inc.Distance = 30

	fuel, err := NewExpenseEntry(ExpenseInput{
		Amount: 40, Kind: KindFuel, Date: NewDate(2024, 1, 1), Liters: 7.2,
	})
	if err != nil {
		t.Fatalf("fuel: %v", err)
	}

	closing, err := NewOdometerClosing(OdometerInput{TotalKM: 10040, Date: NewDate(2024, 1, 1)}, 10000)
	if err != nil {
		t.Fatalf("closing: %v", err)
	}

	s := Summarize([]Entry{inc, fuel, closing})
	if s.TotalKM != 70 {
		t.Fatalf("km = %v, want 70", s.TotalKM)
	}
	if s.TotalLiters != 7.2 {
		t.Fatalf("liters = %v, want 7.2", s.TotalLiters)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	entries := []Entry{
		mustIncome(t, 123.45, NewDate(2024, 1, 1), PayDebit),
		mustExpense(t, 20.20, KindFuel, NewDate(2024, 1, 2)),
		mustExpense(t, 9.99, KindFood, NewDate(2024, 1, 3)),
	}
	if Summarize(entries) != Summarize(entries) {
		t.Fatalf("summarize is not deterministic over an unchanged snapshot")
	}
}

func TestGroupByDay(t *testing.T) {
	cfg := testSettings()
	entries := []Entry{
		mustIncome(t, 300, NewDate(2024, 1, 2), PayCash),
		mustIncome(t, 100, NewDate(2024, 1, 1), PayCash),
		mustIncome(t, 200, NewDate(2024, 1, 1), PayCash),
	}
	days := GroupByDay(entries, cfg)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Date.ISO() != "2024-01-02" || days[1].Date.ISO() != "2024-01-01" {
		t.Fatalf("days not sorted descending: %s, %s", days[0].Date.ISO(), days[1].Date.ISO())
	}
	if !days[0].GoalMet {
		t.Fatalf("300 gross must meet the 250 goal")
	}
	if !days[1].GoalMet {
		t.Fatalf("100+200 gross must meet the 250 goal")
	}

	cfg.DailyGoal = 500
	days = GroupByDay(entries, cfg)
	if days[0].GoalMet || days[1].GoalMet {
		t.Fatalf("no day reaches a 500 goal")
	}
}

func TestGroupByWeekSingleWeek(t *testing.T) {
	// 2024-01-01 is a Monday; the seven days through Sunday 2024-01-07
	// belong to one week whatever order they arrive in.
	var entries []Entry
	for _, day := range []int{4, 1, 7, 3, 6, 2, 5} {
		entries = append(entries, mustIncome(t, 10, NewDate(2024, 1, day), PayCash))
	}
	weeks := GroupByWeek(entries)
	if len(weeks) != 1 {
		t.Fatalf("got %d weeks, want 1", len(weeks))
	}
	if weeks[0].Start.ISO() != "2024-01-01" {
		t.Fatalf("start = %s, want 2024-01-01", weeks[0].Start.ISO())
	}
	if weeks[0].End.ISO() != "2024-01-07" {
		t.Fatalf("end = %s, want 2024-01-07", weeks[0].End.ISO())
	}
	if weeks[0].Entries != 7 {
		t.Fatalf("entries = %d, want 7", weeks[0].Entries)
	}
	if weeks[0].Summary.TotalGross != 70 {
		t.Fatalf("gross = %v, want 70", weeks[0].Summary.TotalGross)
	}
}

func TestGroupByWeekSundayBelongsToPriorMonday(t *testing.T) {
	// 2024-01-07 is a Sunday, 2024-01-08 the next Monday.
	entries := []Entry{
		mustIncome(t, 10, NewDate(2024, 1, 7), PayCash),
		mustIncome(t, 20, NewDate(2024, 1, 8), PayCash),
	}
	weeks := GroupByWeek(entries)
	if len(weeks) != 2 {
		t.Fatalf("got %d weeks, want 2", len(weeks))
	}
	// Descending by start date.
	if weeks[0].Start.ISO() != "2024-01-08" || weeks[1].Start.ISO() != "2024-01-01" {
		t.Fatalf("weeks = %s, %s", weeks[0].Start.ISO(), weeks[1].Start.ISO())
	}
}

func TestFilterApply(t *testing.T) {
	a := mustIncome(t, 10, NewDate(2024, 1, 1), PayCash)
	b := mustExpense(t, 5, KindFuel, NewDate(2024, 1, 2))
	c := mustIncome(t, 20, NewDate(2024, 1, 2), PayTab)
	entries := []Entry{a, b, c}

	got := Filter{Kind: KindIncome}.Apply(entries)
	if len(got) != 2 || got[0].ID != c.ID || got[1].ID != a.ID {
		t.Fatalf("kind filter order wrong: %d results", len(got))
	}

	got = Filter{Payment: PayTab}.Apply(entries)
	if len(got) != 1 || got[0].ID != c.ID {
		t.Fatalf("payment filter wrong")
	}

	got = Filter{From: NewDate(2024, 1, 2)}.Apply(entries)
	if len(got) != 2 {
		t.Fatalf("from filter: %d results, want 2", len(got))
	}
	got = Filter{To: NewDate(2024, 1, 1)}.Apply(entries)
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("to filter wrong")
	}

	// The source snapshot must be untouched.
	if entries[0].ID != a.ID || entries[1].ID != b.ID || entries[2].ID != c.ID {
		t.Fatalf("filter mutated the input slice")
	}
}

func TestTotalsByPaymentAndPending(t *testing.T) {
	cash := mustIncome(t, 100, NewDate(2024, 1, 1), PayCash)
	tab := mustIncome(t, 50, NewDate(2024, 1, 1), PayTab)
	spend := mustExpense(t, 30, KindFood, NewDate(2024, 1, 1))

	entries := []Entry{cash, tab, spend}

	inc := IncomeByPayment(entries)
	if inc[PayCash] != 100 || inc[PayTab] != 50 {
		t.Fatalf("income by payment = %v", inc)
	}
	exp := ExpenseByPayment(entries)
	if exp[""] != 30 {
		t.Fatalf("expense by payment = %v", exp)
	}
	// Tab income and the unsettled expense are pending; cash is not.
	if got := PendingTotal(entries); got != 80 {
		t.Fatalf("pending = %v, want 80", got)
	}
}
