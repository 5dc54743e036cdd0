package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
)

// VisitInput is what a client supplies to record a service visit.
// Line items come from catalog entries (copied at save time) followed by
// any ad-hoc ExtraItems.
type VisitInput struct {
	Date           time.Time
	Mileage        int
	Tax            *float64
	Discount       *float64
	Notes          string
	VehicleID      uuid.UUID
	ProviderID     uuid.UUID
	CatalogItemIDs []uuid.UUID
	ExtraItems     []domain.SavedServiceItem
}

// ServiceVisitService records and lists service visits.
type ServiceVisitService struct {
	store Store
}

// NewServiceVisitService constructs a ServiceVisitService.
func NewServiceVisitService(store Store) *ServiceVisitService {
	return &ServiceVisitService{store: store}
}

// Create validates in, snapshots the chosen catalog items and persists the visit.
// Cost is the sum of the line items and Total is derived from it.
func (s *ServiceVisitService) Create(ctx context.Context, in VisitInput) (domain.ServiceVisit, error) {
	if err := validateVisitInput(in); err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("service.ServiceVisitService.Create: %w", err)
	}

	var created domain.ServiceVisit
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := r.Vehicles.GetByID(ctx, in.VehicleID); err != nil {
			return referenceError("vehicle", err)
		}
		if _, err := r.Providers.GetByID(ctx, in.ProviderID); err != nil {
			return referenceError("provider", err)
		}

		visit := domain.ServiceVisit{
			ID:         uuid.New(),
			Date:       in.Date,
			Mileage:    in.Mileage,
			Tax:        in.Tax,
			Discount:   in.Discount,
			Notes:      strings.TrimSpace(in.Notes),
			VehicleID:  &in.VehicleID,
			ProviderID: &in.ProviderID,
		}
		for _, id := range in.CatalogItemIDs {
			item, err := r.Catalog.GetByID(ctx, id)
			if err != nil {
				return referenceError("catalog item", err)
			}
			visit.Items = append(visit.Items, domain.SnapshotItem(item))
		}
		for _, extra := range in.ExtraItems {
			visit.Items = append(visit.Items, domain.SavedServiceItem{
				ID:   uuid.New(),
				Name: strings.TrimSpace(extra.Name),
				Cost: extra.Cost,
			})
		}
		visit.Cost = visit.ItemsSubtotal()
		visit.Recalculate()

		var err error
		created, err = r.Visits.Create(ctx, visit)
		return err
	})
	if err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("service.ServiceVisitService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a visit with its line items.
func (s *ServiceVisitService) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceVisit, error) {
	v, err := s.store.Repos().Visits.GetByID(ctx, id)
	if err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("service.ServiceVisitService.GetByID: %w", err)
	}
	return v, nil
}

// List returns one page of visits, newest first, and the total count.
// A nil vehicleID lists visits of every vehicle.
func (s *ServiceVisitService) List(ctx context.Context, vehicleID *uuid.UUID, p domain.PaginationParams) ([]domain.ServiceVisit, int64, error) {
	visits, total, err := s.store.Repos().Visits.ListPaged(ctx, repo.VisitFilter{VehicleID: vehicleID}, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ServiceVisitService.List: %w", err)
	}
	if visits == nil {
		visits = []domain.ServiceVisit{}
	}
	return visits, total, nil
}

// Delete removes a visit and its line items.
func (s *ServiceVisitService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Repos().Visits.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ServiceVisitService.Delete: %w", err)
	}
	return nil
}

func validateVisitInput(in VisitInput) error {
	if in.Date.IsZero() {
		return validationError("date is required")
	}
	if in.Mileage < 0 {
		return validationError("mileage must not be negative")
	}
	if in.VehicleID == uuid.Nil {
		return validationError("vehicle_id is required")
	}
	if in.ProviderID == uuid.Nil {
		return validationError("provider_id is required")
	}
	if len(in.CatalogItemIDs)+len(in.ExtraItems) == 0 {
		return validationError("at least one line item is required")
	}
	for i, it := range in.ExtraItems {
		if strings.TrimSpace(it.Name) == "" {
			return validationError("item %d: name is required", i+1)
		}
		if err := itemName(fmt.Sprintf("item %d name", i+1), it.Name); err != nil {
			return err
		}
		if err := nonNegative(fmt.Sprintf("item %d cost", i+1), it.Cost); err != nil {
			return err
		}
	}
	if in.Tax != nil {
		if err := nonNegative("tax", *in.Tax); err != nil {
			return err
		}
	}
	if in.Discount != nil {
		if err := nonNegative("discount", *in.Discount); err != nil {
			return err
		}
	}
	return nil
}

// referenceError reports a missing referenced row as a validation failure,
// since the client named it in the request body.
func referenceError(what string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return validationError("%s not found", what)
	}
	return err
}
