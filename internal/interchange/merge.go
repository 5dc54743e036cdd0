package interchange

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// ImageSource loads a photo referenced by an imported row.
type ImageSource interface {
	Load(name string) ([]byte, error)
}

// Snapshot is the existing store content an import is matched against.
type Snapshot struct {
	Vehicles  []domain.Vehicle
	Providers []domain.ServiceProvider
	Items     []domain.ServiceItem
	Visits    []domain.ServiceVisit
}

// Plan lists everything an import adds. Existing entities are never modified.
type Plan struct {
	NewVehicles  []domain.Vehicle
	NewProviders []domain.ServiceProvider
	NewItems     []domain.ServiceItem
	NewVisits    []domain.ServiceVisit
	Duplicates   int
	Skipped      []domain.SkipReason
}

// MergeOptions configures a Merger. All fields are optional.
type MergeOptions struct {
	// Images resolves ImageFilename for newly created vehicles.
	Images ImageSource
	// Location is the calendar used to compare visit dates. Defaults to UTC.
	Location *time.Location
	Logger   *slog.Logger
}

// visitKey identifies a visit for re-import duplicate detection.
type visitKey struct {
	day       string
	vehicleID uuid.UUID
	mileage   int
}

// Merger matches imported rows to a snapshot, accumulating a Plan.
// Entities created for one row are matched by later rows.
type Merger struct {
	opts      MergeOptions
	vehicles  map[domain.VehicleKey]uuid.UUID
	newByID   map[uuid.UUID]int // index into plan.NewVehicles
	providers map[domain.ProviderKey]uuid.UUID
	items     map[string]uuid.UUID
	visits    map[visitKey]struct{}
	plan      Plan
}

// NewMerger indexes snap for matching.
func NewMerger(snap Snapshot, opts MergeOptions) *Merger {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Merger{
		opts:      opts,
		vehicles:  make(map[domain.VehicleKey]uuid.UUID, len(snap.Vehicles)),
		newByID:   make(map[uuid.UUID]int),
		providers: make(map[domain.ProviderKey]uuid.UUID, len(snap.Providers)),
		items:     make(map[string]uuid.UUID, len(snap.Items)),
		visits:    make(map[visitKey]struct{}, len(snap.Visits)),
	}
	for _, v := range snap.Vehicles {
		if _, ok := m.vehicles[v.Key()]; !ok {
			m.vehicles[v.Key()] = v.ID
		}
	}
	for _, p := range snap.Providers {
		if _, ok := m.providers[p.Key()]; !ok {
			m.providers[p.Key()] = p.ID
		}
	}
	for _, it := range snap.Items {
		key := domain.CatalogKey(it.Name)
		if _, ok := m.items[key]; !ok {
			m.items[key] = it.ID
		}
	}
	for _, v := range snap.Visits {
		if v.VehicleID != nil {
			m.visits[m.keyFor(v.Date, *v.VehicleID, v.Mileage)] = struct{}{}
		}
	}
	return m
}

// Add merges one decoded row. line is used only for skip reasons.
func (m *Merger) Add(line int, row domain.ExportRow) {
	switch {
	case row.Vehicle == "":
		m.skip(line, "missing vehicle name")
		return
	case row.Provider == "":
		m.skip(line, "missing provider name")
		return
	case len(row.ItemNames) == 0:
		m.skip(line, "row has no line items")
		return
	}

	vehicleID := m.vehicle(row)
	key := m.keyFor(row.Date, vehicleID, row.Mileage)
	if _, dup := m.visits[key]; dup {
		m.plan.Duplicates++
		return
	}
	m.visits[key] = struct{}{}

	providerID := m.provider(row)
	visit := domain.ServiceVisit{
		ID:         uuid.New(),
		Date:       row.Date,
		Mileage:    row.Mileage,
		Cost:       row.Cost,
		VehicleID:  &vehicleID,
		ProviderID: &providerID,
	}
	for i, name := range row.ItemNames {
		var cost float64
		if i < len(row.ItemCosts) {
			cost = row.ItemCosts[i]
		}
		m.catalogItem(name, cost)
		visitID := visit.ID
		visit.Items = append(visit.Items, domain.SavedServiceItem{
			ID:       uuid.New(),
			VisitID:  &visitID,
			Name:     name,
			Cost:     cost,
			Position: i,
		})
	}
	if visit.Cost == 0 {
		visit.Cost = visit.ItemsSubtotal()
	}
	visit.Recalculate()
	m.plan.NewVisits = append(m.plan.NewVisits, visit)
}

// Plan returns the accumulated plan.
func (m *Merger) Plan() Plan {
	return m.plan
}

// Merge is a convenience wrapper that adds rows in order, numbering them
// from line 2 (the line after the header).
func Merge(snap Snapshot, rows []domain.ExportRow, opts MergeOptions) Plan {
	m := NewMerger(snap, opts)
	for i, row := range rows {
		m.Add(i+2, row)
	}
	return m.Plan()
}

func (m *Merger) skip(line int, reason string) {
	m.plan.Skipped = append(m.plan.Skipped, domain.SkipReason{Line: line, Reason: reason})
}

func (m *Merger) keyFor(date time.Time, vehicleID uuid.UUID, mileage int) visitKey {
	return visitKey{
		day:       date.In(m.opts.Location).Format("2006-01-02"),
		vehicleID: vehicleID,
		mileage:   mileage,
	}
}

// vehicle returns the ID of the matching vehicle, creating one if needed.
func (m *Merger) vehicle(row domain.ExportRow) uuid.UUID {
	key := row.VehicleKey()
	if id, ok := m.vehicles[key]; ok {
		// Vehicles created by this import track the highest mileage seen.
		if i, isNew := m.newByID[id]; isNew && row.Mileage > m.plan.NewVehicles[i].CurrentMileage {
			m.plan.NewVehicles[i].CurrentMileage = row.Mileage
		}
		return id
	}

	v := domain.Vehicle{
		ID:             uuid.New(),
		Name:           row.Vehicle,
		ModelYear:      row.ModelYear,
		VIN:            row.VIN,
		License:        row.License,
		CurrentMileage: row.Mileage,
	}
	if row.ImageFilename != "" && m.opts.Images != nil {
		data, err := m.opts.Images.Load(row.ImageFilename)
		if err != nil {
			m.opts.Logger.Warn("vehicle photo not imported", "file", row.ImageFilename, "error", err)
		} else {
			v.Photo = data
		}
	}
	m.vehicles[key] = v.ID
	m.newByID[v.ID] = len(m.plan.NewVehicles)
	m.plan.NewVehicles = append(m.plan.NewVehicles, v)
	return v.ID
}

func (m *Merger) provider(row domain.ExportRow) uuid.UUID {
	key := row.ProviderKey()
	if id, ok := m.providers[key]; ok {
		return id
	}
	p := domain.ServiceProvider{ID: uuid.New(), Name: row.Provider, ContactInfo: row.ContactInfo}
	m.providers[key] = p.ID
	m.plan.NewProviders = append(m.plan.NewProviders, p)
	return p.ID
}

// catalogItem ensures a catalog entry exists for name. A new entry takes
// the row's price as its default cost.
func (m *Merger) catalogItem(name string, cost float64) {
	key := domain.CatalogKey(name)
	if _, ok := m.items[key]; ok {
		return
	}
	it := domain.ServiceItem{ID: uuid.New(), Name: key, Cost: cost}
	m.items[key] = it.ID
	m.plan.NewItems = append(m.plan.NewItems, it)
}
