package core

import "sort"

// Summary is the reserve-versus-spend projection over a set of entries.
type Summary struct {
	TotalGross float64
	TotalNet   float64

	ReservedFuel        float64
	ReservedFood        float64
	ReservedMaintenance float64

	SpentFuel        float64
	SpentFood        float64
	SpentMaintenance float64

	// TotalFees is everything taken off gross: the three reserves plus
	// spend beyond them. Overspending a bucket reduces net profit rather
	// than driving that bucket's balance negative; reserves are a plan,
	// not a cap.
	TotalFees float64

	TotalKM     float64
	TotalLiters float64
}

// Summarize folds entries into a Summary. It never mutates its input and
// the result depends only on the multiset of entries, not their order.
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		if e.Distance > 0 {
			s.TotalKM += e.Distance
		}
		switch {
		case e.IsIncome():
			s.TotalGross += e.Gross
			s.ReservedFuel += e.FuelReserve
			s.ReservedFood += e.FoodReserve
			s.ReservedMaintenance += e.MaintenanceReserve
		case e.IsExpense():
			s.SpentFuel += e.FuelReserve
			s.SpentFood += e.FoodReserve
			s.SpentMaintenance += e.MaintenanceReserve
			s.TotalLiters += e.Liters
		}
	}
	excess := max(0, s.SpentFuel-s.ReservedFuel) +
		max(0, s.SpentFood-s.ReservedFood) +
		max(0, s.SpentMaintenance-s.ReservedMaintenance)
	s.TotalFees = s.ReservedFuel + s.ReservedFood + s.ReservedMaintenance + excess
	s.TotalNet = s.TotalGross - s.TotalFees
	return s
}

// DailyStat is one calendar day's totals with the goal check applied.
type DailyStat struct {
	Date    Date
	Summary Summary
	GoalMet bool
}

// GroupByDay partitions entries by calendar date and summarizes each
// partition, most recent day first. The grouping key is the date field
// alone, so the result is the same whatever order entries arrive in.
func GroupByDay(entries []Entry, cfg Settings) []DailyStat {
	byDay := make(map[string][]Entry)
	for _, e := range entries {
		k := e.Date.ISO()
		byDay[k] = append(byDay[k], e)
	}

	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]DailyStat, 0, len(keys))
	for _, k := range keys {
		d, err := ParseDate(k)
		if err != nil {
			continue
		}
		sum := Summarize(byDay[k])
		out = append(out, DailyStat{
			Date:    d,
			Summary: sum,
			GoalMet: sum.TotalGross >= cfg.DailyGoal,
		})
	}
	return out
}

// WeekGroup is one Monday-to-Sunday week's totals.
type WeekGroup struct {
	Start   Date
	End     Date
	Entries int
	Summary Summary
}

// GroupByWeek partitions entries into Monday-start weeks and summarizes
// each, most recent week first.
func GroupByWeek(entries []Entry) []WeekGroup {
	byWeek := make(map[string][]Entry)
	for _, e := range entries {
		k := e.Date.StartOfWeek().ISO()
		byWeek[k] = append(byWeek[k], e)
	}

	keys := make([]string, 0, len(byWeek))
	for k := range byWeek {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]WeekGroup, 0, len(keys))
	for _, k := range keys {
		start, err := ParseDate(k)
		if err != nil {
			continue
		}
		out = append(out, WeekGroup{
			Start:   start,
			End:     start.AddDays(6),
			Entries: len(byWeek[k]),
			Summary: Summarize(byWeek[k]),
		})
	}
	return out
}

// Filter narrows a snapshot without touching it. Zero-valued fields
// match everything.
type Filter struct {
	Kind    Kind
	Payment PaymentMethod
	From    Date // inclusive
	To      Date // inclusive
}

func (f Filter) match(e Entry) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Payment != "" && e.Payment != f.Payment {
		return false
	}
	if !f.From.IsZero() && e.Date.ISO() < f.From.ISO() {
		return false
	}
	if !f.To.IsZero() && e.Date.ISO() > f.To.ISO() {
		return false
	}
	return true
}

// Apply returns matching entries most-recently-added first, driven by
// position in the input slice rather than the date field, so entries on
// the same date keep their entry order. The input is copied, never
// reordered.
func (f Filter) Apply(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if f.match(entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

// IncomeByPayment sums gross income per payment method.
func IncomeByPayment(entries []Entry) map[PaymentMethod]float64 {
	out := make(map[PaymentMethod]float64)
	for _, e := range entries {
		if e.IsIncome() {
			out[e.Payment] += e.Gross
		}
	}
	return out
}

// ExpenseByPayment sums expense amounts per payment method.
func ExpenseByPayment(entries []Entry) map[PaymentMethod]float64 {
	out := make(map[PaymentMethod]float64)
	for _, e := range entries {
		if e.IsExpense() {
			out[e.Payment] += e.ExpenseAmount()
		}
	}
	return out
}

// PendingTotal sums money movement not yet reconciled: unsettled income
// and unsettled expenses, typically running-tab entries.
func PendingTotal(entries []Entry) float64 {
	var total float64
	for _, e := range entries {
		if e.Settled || e.Kind == KindOdometer {
			continue
		}
		if e.IsIncome() {
			total += e.Gross
		} else {
			total += e.ExpenseAmount()
		}
	}
	return total
}
