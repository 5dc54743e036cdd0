package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
)

// ProviderService implements business logic for service providers.
type ProviderService struct {
	store Store
}

// NewProviderService constructs a ProviderService.
func NewProviderService(store Store) *ProviderService {
	return &ProviderService{store: store}
}

// Create validates and persists a provider.
func (s *ProviderService) Create(ctx context.Context, p domain.ServiceProvider) (domain.ServiceProvider, error) {
	name, err := requireName("name", p.Name)
	if err != nil {
		return domain.ServiceProvider{}, fmt.Errorf("service.ProviderService.Create: %w", err)
	}
	p.Name = name
	p.ContactInfo = strings.TrimSpace(p.ContactInfo)
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	created, err := s.store.Repos().Providers.Create(ctx, p)
	if err != nil {
		return domain.ServiceProvider{}, fmt.Errorf("service.ProviderService.Create: %w", err)
	}
	return created, nil
}

// List returns all providers.
func (s *ProviderService) List(ctx context.Context) ([]domain.ServiceProvider, error) {
	providers, err := s.store.Repos().Providers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ProviderService.List: %w", err)
	}
	if providers == nil {
		providers = []domain.ServiceProvider{}
	}
	return providers, nil
}

// Delete removes a provider after clearing it from its visits.
func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := r.Visits.UnlinkProvider(ctx, id); err != nil {
			return err
		}
		return r.Providers.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.ProviderService.Delete: %w", err)
	}
	return nil
}
