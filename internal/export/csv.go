// Package export renders ledger entries for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"giro/internal/core"
)

var csvHeader = []string{
	"date",
	"time",
	"label",
	"gross",
	"fuel_reserve",
	"food_reserve",
	"maintenance_reserve",
	"net",
	"distance_km",
	"fuel_price",
}

// WriteCSV writes the entries as CSV in their given order. Money and
// distance columns carry two decimals to match what spreadsheets expect.
func WriteCSV(w io.Writer, entries []core.Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			e.Date.ISO(),
			string(e.Time),
			e.Label,
			money(e.Gross),
			money(e.FuelReserve),
			money(e.FoodReserve),
			money(e.MaintenanceReserve),
			money(e.Net),
			money(e.Distance),
			money(e.FuelPrice),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
