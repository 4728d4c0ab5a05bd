package core

import (
	"math"
	"sort"
	"strings"
)

// AlertStatus is the due projection for one configured maintenance
// alert.
type AlertStatus struct {
	Alert           MaintenanceAlert
	LastServiceKM   float64
	NextServiceKM   float64
	KMRemaining     float64
	ProgressPercent float64
	Urgent          bool

	// Calendar projection from recent average daily distance. HasEstimate
	// is false when no distance-bearing income entries exist; the km
	// figures above are still valid then.
	EstimatedDays int
	EstimatedDate Date
	HasEstimate   bool
}

// CurrentOdometerKM is the best available estimate of the vehicle's
// total distance: the largest distance or odometer figure on any entry.
func CurrentOdometerKM(entries []Entry) float64 {
	var km float64
	for _, e := range entries {
		if e.Distance > km {
			km = e.Distance
		}
		if e.Odometer > km {
			km = e.Odometer
		}
	}
	return km
}

// AvgDailyKM is the mean distance of the ten most recent income entries
// carrying one. Ties on date fall back to entry order, newest first.
func AvgDailyKM(entries []Entry) float64 {
	type rec struct {
		date string
		idx  int
		km   float64
	}
	var recent []rec
	for i, e := range entries {
		if e.IsIncome() && e.Distance > 0 {
			recent = append(recent, rec{date: e.Date.ISO(), idx: i, km: e.Distance})
		}
	}
	if len(recent) == 0 {
		return 0
	}
	sort.Slice(recent, func(i, j int) bool {
		if recent[i].date != recent[j].date {
			return recent[i].date > recent[j].date
		}
		return recent[i].idx > recent[j].idx
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	var total float64
	for _, r := range recent {
		total += r.km
	}
	return total / float64(len(recent))
}

// ProjectMaintenance computes the due status of every configured alert
// as of the given date. A nil or empty alert list yields an empty
// result. A maintenance expense counts toward an alert when it carries
// the alert's id, or, lacking an explicit link, when its label contains
// the alert description (case-insensitive).
func ProjectMaintenance(entries []Entry, cfg Settings, asOf Date) []AlertStatus {
	current := CurrentOdometerKM(entries)
	avg := AvgDailyKM(entries)

	out := make([]AlertStatus, 0, len(cfg.Alerts))
	for _, a := range cfg.Alerts {
		last := a.LastKM
		found := false
		var lastService float64
		for _, e := range entries {
			if e.Kind != KindMaintenance || !linkedToAlert(e, a) {
				continue
			}
			found = true
			if e.Odometer > lastService {
				lastService = e.Odometer
			}
		}
		if found {
			last = lastService
		}

		next := last + a.KMInterval
		remaining := next - current
		var progress float64
		if a.KMInterval > 0 {
			progress = (current - last) / a.KMInterval * 100
		}
		progress = math.Min(100, math.Max(0, progress))

		st := AlertStatus{
			Alert:           a,
			LastServiceKM:   last,
			NextServiceKM:   next,
			KMRemaining:     remaining,
			ProgressPercent: progress,
			Urgent:          remaining < 1000,
		}
		if avg > 0 {
			days := int(math.Ceil(remaining / avg))
			if days < 0 {
				days = 0
			}
			st.EstimatedDays = days
			st.EstimatedDate = asOf.AddDays(days)
			st.HasEstimate = true
		}
		out = append(out, st)
	}
	return out
}

func linkedToAlert(e Entry, a MaintenanceAlert) bool {
	if e.AlertID != "" {
		return e.AlertID == a.ID
	}
	return strings.Contains(strings.ToLower(e.Label), strings.ToLower(a.Description))
}
