package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
)

// VehicleService implements business logic for Vehicle operations.
type VehicleService struct {
	store Store
}

// NewVehicleService constructs a VehicleService backed by the provided Store.
func NewVehicleService(store Store) *VehicleService {
	return &VehicleService{store: store}
}

// Create validates and persists a new vehicle.
func (s *VehicleService) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v, err := normalizeVehicle(v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	created, err := s.store.Repos().Vehicles.Create(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single vehicle by ID.
func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	v, err := s.store.Repos().Vehicles.GetByID(ctx, id)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.GetByID: %w", err)
	}
	return v, nil
}

// List returns all vehicles. The result is never nil.
func (s *VehicleService) List(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles, err := s.store.Repos().Vehicles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.VehicleService.List: %w", err)
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	return vehicles, nil
}

// Update validates and overwrites the descriptive fields of a vehicle.
// The stored photo is kept; use SetPhoto to change it.
func (s *VehicleService) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	v, err := normalizeVehicle(v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
	}

	vehicles := s.store.Repos().Vehicles
	existing, err := vehicles.GetByID(ctx, v.ID)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
	}
	v.Photo = existing.Photo

	updated, err := vehicles.Update(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.Update: %w", err)
	}
	return updated, nil
}

// SetPhoto replaces the vehicle's photo. Empty data removes it.
func (s *VehicleService) SetPhoto(ctx context.Context, id uuid.UUID, data []byte) (domain.Vehicle, error) {
	vehicles := s.store.Repos().Vehicles
	v, err := vehicles.GetByID(ctx, id)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.SetPhoto: %w", err)
	}
	v.Photo = nil
	if len(data) > 0 {
		v.Photo = data
	}

	updated, err := vehicles.Update(ctx, v)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("service.VehicleService.SetPhoto: %w", err)
	}
	return updated, nil
}

// Delete removes a vehicle. Its service and refuel visits are kept with the
// vehicle reference cleared, so they drop out of exports.
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := r.Visits.UnlinkVehicle(ctx, id); err != nil {
			return err
		}
		if _, err := r.Refuels.UnlinkVehicle(ctx, id); err != nil {
			return err
		}
		return r.Vehicles.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.VehicleService.Delete: %w", err)
	}
	return nil
}

func normalizeVehicle(v domain.Vehicle) (domain.Vehicle, error) {
	name, err := requireName("name", v.Name)
	if err != nil {
		return domain.Vehicle{}, err
	}
	v.Name = name
	v.VIN = strings.TrimSpace(v.VIN)
	v.License = strings.TrimSpace(v.License)
	if v.ModelYear < 0 {
		return domain.Vehicle{}, validationError("year must not be negative")
	}
	if v.CurrentMileage < 0 {
		return domain.Vehicle{}, validationError("current mileage must not be negative")
	}
	return v, nil
}
