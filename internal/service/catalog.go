package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// CatalogService manages the catalog of reusable service items.
// Catalog edits never reach line items already saved on visits.
type CatalogService struct {
	store Store
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(store Store) *CatalogService {
	return &CatalogService{store: store}
}

// Create validates and persists a catalog item.
func (s *CatalogService) Create(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error) {
	item, err := normalizeCatalogItem(item)
	if err != nil {
		return domain.ServiceItem{}, fmt.Errorf("service.CatalogService.Create: %w", err)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	created, err := s.store.Repos().Catalog.Create(ctx, item)
	if err != nil {
		return domain.ServiceItem{}, fmt.Errorf("service.CatalogService.Create: %w", err)
	}
	return created, nil
}

// List returns all catalog items.
func (s *CatalogService) List(ctx context.Context) ([]domain.ServiceItem, error) {
	items, err := s.store.Repos().Catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CatalogService.List: %w", err)
	}
	if items == nil {
		items = []domain.ServiceItem{}
	}
	return items, nil
}

// Update changes a catalog item's name and default price.
func (s *CatalogService) Update(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error) {
	item, err := normalizeCatalogItem(item)
	if err != nil {
		return domain.ServiceItem{}, fmt.Errorf("service.CatalogService.Update: %w", err)
	}

	updated, err := s.store.Repos().Catalog.Update(ctx, item)
	if err != nil {
		return domain.ServiceItem{}, fmt.Errorf("service.CatalogService.Update: %w", err)
	}
	return updated, nil
}

func normalizeCatalogItem(item domain.ServiceItem) (domain.ServiceItem, error) {
	name, err := requireName("name", item.Name)
	if err != nil {
		return domain.ServiceItem{}, err
	}
	if err := itemName("name", name); err != nil {
		return domain.ServiceItem{}, err
	}
	item.Name = domain.CatalogKey(name)
	if err := nonNegative("cost", item.Cost); err != nil {
		return domain.ServiceItem{}, err
	}
	return item, nil
}
