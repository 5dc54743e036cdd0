package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// ProviderRepo defines the persistence operations for ServiceProviders.
type ProviderRepo interface {
	Create(ctx context.Context, p domain.ServiceProvider) (domain.ServiceProvider, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceProvider, error)
	// List returns all providers ordered by name.
	List(ctx context.Context) ([]domain.ServiceProvider, error)
	// Delete removes a provider. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgProviderRepo struct {
	db db
}

// NewProviderRepo constructs a ProviderRepo backed by the provided db connection.
func NewProviderRepo(db db) ProviderRepo {
	return &pgProviderRepo{db: db}
}

func (r *pgProviderRepo) Create(ctx context.Context, p domain.ServiceProvider) (domain.ServiceProvider, error) {
	const q = `
		INSERT INTO service_providers (id, name, contact_info)
		VALUES (@id, @name, @contact_info)
		RETURNING id, name, contact_info, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":           p.ID,
		"name":         p.Name,
		"contact_info": p.ContactInfo,
	})
	result, err := scanProvider(row)
	if err != nil {
		return domain.ServiceProvider{}, fmt.Errorf("repo.ProviderRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceProvider, error) {
	const q = `SELECT id, name, contact_info, created_at FROM service_providers WHERE id = @id`

	result, err := scanProvider(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ServiceProvider{}, fmt.Errorf("repo.ProviderRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgProviderRepo) List(ctx context.Context) ([]domain.ServiceProvider, error) {
	const q = `SELECT id, name, contact_info, created_at FROM service_providers ORDER BY name, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ProviderRepo.List: %w", err)
	}
	defer rows.Close()

	providers := []domain.ServiceProvider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ProviderRepo.List: scan: %w", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ProviderRepo.List: rows: %w", err)
	}
	return providers, nil
}

func (r *pgProviderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_providers WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ProviderRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ProviderRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanProvider(s scanner) (domain.ServiceProvider, error) {
	var p domain.ServiceProvider
	if err := s.Scan(&p.ID, &p.Name, &p.ContactInfo, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ServiceProvider{}, domain.ErrNotFound
		}
		return domain.ServiceProvider{}, err
	}
	return p, nil
}
