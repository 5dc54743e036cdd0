package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/fueleconomy"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
)

// RefuelService records fill-ups and reports fuel economy.
type RefuelService struct {
	store Store
}

// NewRefuelService constructs a RefuelService.
func NewRefuelService(store Store) *RefuelService {
	return &RefuelService{store: store}
}

// CreateStation validates and persists a refuel station.
func (s *RefuelService) CreateStation(ctx context.Context, st domain.RefuelStation) (domain.RefuelStation, error) {
	name, err := requireName("name", st.Name)
	if err != nil {
		return domain.RefuelStation{}, fmt.Errorf("service.RefuelService.CreateStation: %w", err)
	}
	st.Name = name
	st.Location = strings.TrimSpace(st.Location)
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}

	created, err := s.store.Repos().Refuels.CreateStation(ctx, st)
	if err != nil {
		return domain.RefuelStation{}, fmt.Errorf("service.RefuelService.CreateStation: %w", err)
	}
	return created, nil
}

// ListStations returns all stations.
func (s *RefuelService) ListStations(ctx context.Context) ([]domain.RefuelStation, error) {
	stations, err := s.store.Repos().Refuels.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.RefuelService.ListStations: %w", err)
	}
	if stations == nil {
		stations = []domain.RefuelStation{}
	}
	return stations, nil
}

// DeleteStation removes a station after clearing it from its visits.
func (s *RefuelService) DeleteStation(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := r.Refuels.UnlinkStation(ctx, id); err != nil {
			return err
		}
		return r.Refuels.DeleteStation(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.RefuelService.DeleteStation: %w", err)
	}
	return nil
}

// CreateVisit validates and persists a fill-up. Total is recomputed.
func (s *RefuelService) CreateVisit(ctx context.Context, v domain.RefuelVisit) (domain.RefuelVisit, error) {
	if err := validateRefuel(v); err != nil {
		return domain.RefuelVisit{}, fmt.Errorf("service.RefuelService.CreateVisit: %w", err)
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.Recalculate()

	r := s.store.Repos()
	if _, err := r.Vehicles.GetByID(ctx, *v.VehicleID); err != nil {
		return domain.RefuelVisit{}, fmt.Errorf("service.RefuelService.CreateVisit: %w", referenceError("vehicle", err))
	}
	created, err := r.Refuels.CreateVisit(ctx, v)
	if err != nil {
		return domain.RefuelVisit{}, fmt.Errorf("service.RefuelService.CreateVisit: %w", err)
	}
	return created, nil
}

// ListVisits returns fill-ups oldest first. A nil vehicleID lists all.
func (s *RefuelService) ListVisits(ctx context.Context, vehicleID *uuid.UUID) ([]domain.RefuelVisit, error) {
	visits, err := s.store.Repos().Refuels.ListVisits(ctx, repo.VisitFilter{VehicleID: vehicleID})
	if err != nil {
		return nil, fmt.Errorf("service.RefuelService.ListVisits: %w", err)
	}
	if visits == nil {
		visits = []domain.RefuelVisit{}
	}
	return visits, nil
}

// FuelEconomy computes the MPG report for one vehicle.
func (s *RefuelService) FuelEconomy(ctx context.Context, vehicleID uuid.UUID) (fueleconomy.Report, error) {
	r := s.store.Repos()
	if _, err := r.Vehicles.GetByID(ctx, vehicleID); err != nil {
		return fueleconomy.Report{}, fmt.Errorf("service.RefuelService.FuelEconomy: %w", err)
	}
	visits, err := r.Refuels.ListVisits(ctx, repo.VisitFilter{VehicleID: &vehicleID})
	if err != nil {
		return fueleconomy.Report{}, fmt.Errorf("service.RefuelService.FuelEconomy: %w", err)
	}
	return fueleconomy.Compute(vehicleID, visits), nil
}

func validateRefuel(v domain.RefuelVisit) error {
	switch {
	case v.VehicleID == nil || *v.VehicleID == uuid.Nil:
		return validationError("vehicle_id is required")
	case v.Date.IsZero():
		return validationError("date is required")
	case v.Odometer < 0:
		return validationError("odometer must not be negative")
	case v.Gallons <= 0:
		return validationError("gallons must be positive")
	case v.CostPerGallon < 0:
		return validationError("cost per gallon must not be negative")
	case v.CarWashCost != nil && *v.CarWashCost < 0:
		return validationError("car wash cost must not be negative")
	}
	return nil
}
