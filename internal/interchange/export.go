// Package interchange maps between the stored record graph and the flat
// rows of the interchange CSV file.
//
// Both directions are pure with respect to the store: Flatten reads a
// snapshot of entities, and Merge returns the entities an import would add.
// Persisting them is the caller's job.
package interchange

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// ImageSink stores a vehicle photo next to an export and returns its file name.
type ImageSink interface {
	SaveVehiclePhoto(vehicleID uuid.UUID, data []byte) (string, error)
}

// Flatten converts service visits to export rows, one row per valid visit,
// in input order. Visits without a vehicle, a provider, or line items are
// skipped and listed in the manifest.
//
// When images is non-nil, each vehicle photo is written once. A failed write
// is logged and leaves ImageFilename empty; the row is still exported.
func Flatten(
	visits []domain.ServiceVisit,
	vehicles []domain.Vehicle,
	providers []domain.ServiceProvider,
	images ImageSink,
	log *slog.Logger,
) ([]domain.ExportRow, domain.ExportManifest) {
	if log == nil {
		log = slog.Default()
	}

	vehicleByID := make(map[uuid.UUID]domain.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vehicleByID[v.ID] = v
	}
	providerByID := make(map[uuid.UUID]domain.ServiceProvider, len(providers))
	for _, p := range providers {
		providerByID[p.ID] = p
	}

	manifest := domain.ExportManifest{SkippedReasons: []domain.SkipReason{}}
	imageNames := make(map[uuid.UUID]string)
	rows := make([]domain.ExportRow, 0, len(visits))

	for _, visit := range visits {
		if err := visit.Validate(); err != nil {
			manifest.Skip(domain.SkipReason{Record: visit.ID.String(), Reason: err.Error()})
			continue
		}
		vehicle, ok := vehicleByID[*visit.VehicleID]
		if !ok {
			manifest.Skip(domain.SkipReason{Record: visit.ID.String(), Reason: "vehicle not found"})
			continue
		}
		provider, ok := providerByID[*visit.ProviderID]
		if !ok {
			manifest.Skip(domain.SkipReason{Record: visit.ID.String(), Reason: "provider not found"})
			continue
		}

		filename, seen := imageNames[vehicle.ID]
		if !seen {
			if images != nil && vehicle.HasPhoto() {
				name, err := images.SaveVehiclePhoto(vehicle.ID, vehicle.Photo)
				if err != nil {
					log.Warn("vehicle photo not exported", "vehicle_id", vehicle.ID, "error", err)
				} else {
					filename = name
					manifest.Images++
				}
			}
			imageNames[vehicle.ID] = filename
		}

		rows = append(rows, visitToRow(visit, vehicle, provider, filename))
		manifest.Written++
	}

	return rows, manifest
}

func visitToRow(visit domain.ServiceVisit, vehicle domain.Vehicle, provider domain.ServiceProvider, image string) domain.ExportRow {
	names := make([]string, len(visit.Items))
	costs := make([]float64, len(visit.Items))
	for i, it := range visit.Items {
		names[i] = it.Name
		costs[i] = it.Cost
	}
	return domain.ExportRow{
		Date:          visit.Date,
		Mileage:       visit.Mileage,
		Cost:          visit.Cost,
		ItemNames:     names,
		ItemCosts:     costs,
		Provider:      provider.Name,
		ContactInfo:   provider.ContactInfo,
		Vehicle:       vehicle.Name,
		ModelYear:     vehicle.ModelYear,
		VIN:           vehicle.VIN,
		License:       vehicle.License,
		ImageFilename: image,
	}
}
