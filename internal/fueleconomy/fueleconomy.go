// Package fueleconomy computes miles per gallon from a vehicle's refuel history.
//
// MPG for a fill-up is the odometer distance since the previous fill-up
// divided by the gallons bought. The first fill-up has no previous odometer
// reading, so its MPG is undefined (nil), never zero.
//
// Odometer readings are assumed to increase. A decrease (usually a typo)
// yields a negative MPG; it is reported as-is, not clamped.
package fueleconomy

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// Entry is one fill-up with its derived figures.
type Entry struct {
	Visit    domain.RefuelVisit `json:"visit"`
	Distance *int               `json:"distance,omitempty"` // miles since previous fill-up
	MPG      *float64           `json:"mpg,omitempty"`
}

// Report is the fuel economy of one vehicle.
type Report struct {
	VehicleID    uuid.UUID `json:"vehicle_id"`
	Entries      []Entry   `json:"entries"`
	AverageMPG   *float64  `json:"average_mpg,omitempty"`
	TotalGallons float64   `json:"total_gallons"`
	TotalCost    float64   `json:"total_cost"`
	// CostPerMile is fuel spend after the first fill-up over the distance
	// driven on it. Nil until there is positive distance.
	CostPerMile *float64 `json:"cost_per_mile,omitempty"`
}

// Compute builds the report for vehicleID from visits, which may include
// other vehicles' fill-ups. Visits are ordered by date with a stable sort,
// so fill-ups on the same date keep their input order.
func Compute(vehicleID uuid.UUID, visits []domain.RefuelVisit) Report {
	own := make([]domain.RefuelVisit, 0, len(visits))
	for _, v := range visits {
		if v.VehicleID != nil && *v.VehicleID == vehicleID {
			own = append(own, v)
		}
	}
	slices.SortStableFunc(own, func(a, b domain.RefuelVisit) int {
		return a.Date.Compare(b.Date)
	})

	report := Report{VehicleID: vehicleID, Entries: make([]Entry, 0, len(own))}

	var (
		previous    *int
		mpgSum      float64
		mpgCount    int
		gallons     = decimal.Zero
		cost        = decimal.Zero
		drivenCost  = decimal.Zero
		drivenMiles int
	)
	for _, v := range own {
		e := Entry{Visit: v}
		if previous != nil {
			d := v.Odometer - *previous
			e.Distance = &d
			drivenMiles += d
			drivenCost = drivenCost.Add(decimal.NewFromFloat(v.Total))
			if v.Gallons > 0 {
				mpg := float64(d) / v.Gallons
				e.MPG = &mpg
				mpgSum += mpg
				mpgCount++
			}
		}
		odo := v.Odometer
		previous = &odo

		gallons = gallons.Add(decimal.NewFromFloat(v.Gallons))
		cost = cost.Add(decimal.NewFromFloat(v.Total))
		report.Entries = append(report.Entries, e)
	}

	if mpgCount > 0 {
		avg := mpgSum / float64(mpgCount)
		report.AverageMPG = &avg
	}
	report.TotalGallons = gallons.InexactFloat64()
	report.TotalCost = cost.InexactFloat64()
	if drivenMiles > 0 {
		cpm := drivenCost.Div(decimal.NewFromInt(int64(drivenMiles))).InexactFloat64()
		report.CostPerMile = &cpm
	}
	return report
}
