package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"giro/internal/core"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads a JSON request body into dst with a size cap. A single
// JSON value is required; trailing garbage is rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// parseDateOrToday parses an ISO date, defaulting to the current day when
// the field was omitted.
func parseDateOrToday(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		now := time.Now()
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return core.ParseDate(s)
}

// parseFilter builds an entry filter from query parameters. Supported
// keys: kind, payment, from, to.
func parseFilter(query url.Values) (core.Filter, error) {
	var f core.Filter

	if v := strings.TrimSpace(query.Get("kind")); v != "" {
		k := core.Kind(v)
		if !k.Valid() {
			return core.Filter{}, fmt.Errorf("%w: %q", core.ErrInvalidKind, v)
		}
		f.Kind = k
	}
	if v := strings.TrimSpace(query.Get("payment")); v != "" {
		p := core.PaymentMethod(v)
		if !p.Valid() {
			return core.Filter{}, fmt.Errorf("%w: %q", core.ErrInvalidPayment, v)
		}
		f.Payment = p
	}
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, err
		}
		f.From = d
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Filter{}, err
		}
		f.To = d
	}

	return f, nil
}

type incomeRequest struct {
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Gross     float64 `json:"gross"`
	Label     string  `json:"label"`
	Distance  float64 `json:"distance_km"`
	FuelPrice float64 `json:"fuel_price"`
	Payment   string  `json:"payment"`
}

func (req incomeRequest) input() (core.IncomeInput, error) {
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		return core.IncomeInput{}, err
	}
	return core.IncomeInput{
		Gross:     req.Gross,
		Date:      date,
		Time:      core.Clock(req.Time),
		Label:     req.Label,
		Distance:  req.Distance,
		FuelPrice: req.FuelPrice,
		Payment:   core.PaymentMethod(req.Payment),
	}, nil
}

type expenseRequest struct {
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Amount      float64 `json:"amount"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Odometer    float64 `json:"odometer_km"`
	Payment     string  `json:"payment"`
	Liters      float64 `json:"liters"`
	AlertID     string  `json:"alert_id"`
}

func (req expenseRequest) input() (core.ExpenseInput, error) {
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		return core.ExpenseInput{}, err
	}
	return core.ExpenseInput{
		Amount:      req.Amount,
		Kind:        core.Kind(req.Kind),
		Date:        date,
		Time:        core.Clock(req.Time),
		Description: req.Description,
		Odometer:    req.Odometer,
		Payment:     core.PaymentMethod(req.Payment),
		Liters:      req.Liters,
		AlertID:     req.AlertID,
	}, nil
}

type odometerRequest struct {
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	TotalKM   float64 `json:"total_km"`
	FuelPrice float64 `json:"fuel_price"`
}

func (req odometerRequest) input() (core.OdometerInput, error) {
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		return core.OdometerInput{}, err
	}
	return core.OdometerInput{
		TotalKM:   req.TotalKM,
		Date:      date,
		Time:      core.Clock(req.Time),
		FuelPrice: req.FuelPrice,
	}, nil
}

// updateEntryRequest is the union of the income and expense shapes; the
// kind field selects which one applies.
type updateEntryRequest struct {
	Kind        string  `json:"kind"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Gross       float64 `json:"gross"`
	Label       string  `json:"label"`
	Distance    float64 `json:"distance_km"`
	FuelPrice   float64 `json:"fuel_price"`
	Payment     string  `json:"payment"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Odometer    float64 `json:"odometer_km"`
	Liters      float64 `json:"liters"`
	AlertID     string  `json:"alert_id"`
}
