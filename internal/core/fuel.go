package core

// FuelMetrics are the derived fuel-efficiency ratios. Every ratio is
// zero when its denominator is zero; the caller renders that as "no data
// yet", never NaN or infinity.
type FuelMetrics struct {
	CostPerKM       float64
	CostPerDelivery float64
	KMPerLiter      float64
	AvgPricePerLiter float64
	TotalLiters     float64
}

// ComputeFuelMetrics derives the ratios from total distance across all
// entries, fuel spend and liters on fuel expenses, and the income entry
// count as the delivery count.
func ComputeFuelMetrics(entries []Entry) FuelMetrics {
	var (
		totalKM        float64
		totalFuelSpent float64
		totalLiters    float64
		deliveries     int
	)
	for _, e := range entries {
		if e.Distance > 0 {
			totalKM += e.Distance
		}
		switch e.Kind {
		case KindIncome:
			deliveries++
		case KindFuel:
			totalFuelSpent += e.FuelReserve
			totalLiters += e.Liters
		}
	}

	m := FuelMetrics{TotalLiters: totalLiters}
	if totalKM > 0 {
		m.CostPerKM = totalFuelSpent / totalKM
	}
	if deliveries > 0 {
		m.CostPerDelivery = totalFuelSpent / float64(deliveries)
	}
	if totalLiters > 0 {
		m.KMPerLiter = totalKM / totalLiters
		m.AvgPricePerLiter = totalFuelSpent / totalLiters
	}
	return m
}
