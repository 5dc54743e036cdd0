package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/analytics"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
)

// AnalyticsService builds cost reports over stored visits.
type AnalyticsService struct {
	store Store
	loc   *time.Location
}

// NewAnalyticsService constructs an AnalyticsService. Years are taken in loc;
// nil means UTC.
func NewAnalyticsService(store Store, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{store: store, loc: loc}
}

// ServiceCosts groups service visit totals by year and provider.
// A nil vehicleID covers every vehicle.
func (s *AnalyticsService) ServiceCosts(ctx context.Context, vehicleID *uuid.UUID) (analytics.Report, error) {
	r := s.store.Repos()
	visits, err := r.Visits.List(ctx, repo.VisitFilter{VehicleID: vehicleID})
	if err != nil {
		return analytics.Report{}, fmt.Errorf("service.AnalyticsService.ServiceCosts: %w", err)
	}
	providers, err := r.Providers.List(ctx)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("service.AnalyticsService.ServiceCosts: %w", err)
	}

	names := make(map[uuid.UUID]string, len(providers))
	for _, p := range providers {
		names[p.ID] = p.Name
	}
	return analytics.Build(analytics.FromServiceVisits(visits, names), s.loc), nil
}

// FuelCosts groups refuel totals by year and station.
func (s *AnalyticsService) FuelCosts(ctx context.Context, vehicleID *uuid.UUID) (analytics.Report, error) {
	r := s.store.Repos()
	visits, err := r.Refuels.ListVisits(ctx, repo.VisitFilter{VehicleID: vehicleID})
	if err != nil {
		return analytics.Report{}, fmt.Errorf("service.AnalyticsService.FuelCosts: %w", err)
	}
	stations, err := r.Refuels.ListStations(ctx)
	if err != nil {
		return analytics.Report{}, fmt.Errorf("service.AnalyticsService.FuelCosts: %w", err)
	}

	names := make(map[uuid.UUID]string, len(stations))
	for _, st := range stations {
		names[st.ID] = st.Name
	}
	return analytics.Build(analytics.FromRefuelVisits(visits, names), s.loc), nil
}
