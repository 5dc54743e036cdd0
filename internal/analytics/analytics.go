// Package analytics groups visit costs by calendar year and by provider.
//
// Sums are accumulated with decimal arithmetic so that totals of many
// two-decimal amounts do not drift.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// UnknownProvider labels entries whose provider reference is absent.
const UnknownProvider = "Unknown"

// Entry is one costed event.
type Entry struct {
	Date     time.Time
	Provider string // empty when unknown
	Amount   float64
}

// YearTotal is the cost summed over one calendar year.
type YearTotal struct {
	Year  int     `json:"year"`
	Total float64 `json:"total"`
}

// ProviderTotal is the cost summed over one provider.
type ProviderTotal struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// Summary holds scalar aggregates.
// AveragePerYear is the mean of the per-year totals, not Total divided by Count.
type Summary struct {
	Total            float64 `json:"total"`
	Count            int     `json:"count"`
	AveragePerRecord float64 `json:"average_per_record"`
	AveragePerYear   float64 `json:"average_per_year"`
}

// FromServiceVisits builds entries from service visit totals. providerNames
// maps provider IDs to names; a missing or unmapped provider becomes "".
func FromServiceVisits(visits []domain.ServiceVisit, providerNames map[uuid.UUID]string) []Entry {
	out := make([]Entry, 0, len(visits))
	for _, v := range visits {
		e := Entry{Date: v.Date, Amount: v.Total}
		if v.ProviderID != nil {
			e.Provider = providerNames[*v.ProviderID]
		}
		out = append(out, e)
	}
	return out
}

// FromRefuelVisits builds entries from refuel visit totals, using the
// station as the provider.
func FromRefuelVisits(visits []domain.RefuelVisit, stationNames map[uuid.UUID]string) []Entry {
	out := make([]Entry, 0, len(visits))
	for _, v := range visits {
		e := Entry{Date: v.Date, Amount: v.Total}
		if v.StationID != nil {
			e.Provider = stationNames[*v.StationID]
		}
		out = append(out, e)
	}
	return out
}

// ByYear sums entries per calendar year in loc, ascending by year.
// A nil loc means UTC.
func ByYear(entries []Entry, loc *time.Location) []YearTotal {
	if loc == nil {
		loc = time.UTC
	}
	sums := make(map[int]decimal.Decimal)
	for _, e := range entries {
		y := e.Date.In(loc).Year()
		sums[y] = sums[y].Add(decimal.NewFromFloat(e.Amount))
	}

	out := make([]YearTotal, 0, len(sums))
	for y, s := range sums {
		out = append(out, YearTotal{Year: y, Total: s.InexactFloat64()})
	}
	slices.SortFunc(out, func(a, b YearTotal) int { return cmp.Compare(a.Year, b.Year) })
	return out
}

// ByProvider sums entries per provider name, descending by total.
// Ties are ordered by name so output is deterministic.
func ByProvider(entries []Entry) []ProviderTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range entries {
		name := e.Provider
		if name == "" {
			name = UnknownProvider
		}
		sums[name] = sums[name].Add(decimal.NewFromFloat(e.Amount))
	}

	out := make([]ProviderTotal, 0, len(sums))
	for name, s := range sums {
		out = append(out, ProviderTotal{Name: name, Total: s.InexactFloat64()})
	}
	slices.SortFunc(out, func(a, b ProviderTotal) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Summarize computes the scalar aggregates. Zero entries yield a zero Summary.
func Summarize(entries []Entry, loc *time.Location) Summary {
	if len(entries) == 0 {
		return Summary{}
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}

	years := ByYear(entries, loc)
	yearSum := decimal.Zero
	for _, y := range years {
		yearSum = yearSum.Add(decimal.NewFromFloat(y.Total))
	}

	return Summary{
		Total:            total.InexactFloat64(),
		Count:            len(entries),
		AveragePerRecord: total.Div(decimal.NewFromInt(int64(len(entries)))).InexactFloat64(),
		AveragePerYear:   yearSum.Div(decimal.NewFromInt(int64(len(years)))).InexactFloat64(),
	}
}

// Report bundles the groupings used by summary screens.
type Report struct {
	ByYear     []YearTotal     `json:"by_year"`
	ByProvider []ProviderTotal `json:"by_provider"`
	Summary    Summary         `json:"summary"`
}

// Build computes every grouping for entries.
func Build(entries []Entry, loc *time.Location) Report {
	return Report{
		ByYear:     ByYear(entries, loc),
		ByProvider: ByProvider(entries),
		Summary:    Summarize(entries, loc),
	}
}
