package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// CatalogRepo defines the persistence operations for catalog ServiceItems.
type CatalogRepo interface {
	// Create inserts a catalog item. Returns domain.ErrConflict when an item
	// with the same name already exists.
	Create(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceItem, error)
	// List returns all catalog items ordered by name.
	List(ctx context.Context) ([]domain.ServiceItem, error)
	// Update changes name and default price. Saved line items are not touched.
	Update(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error)
}

type pgCatalogRepo struct {
	db db
}

// NewCatalogRepo constructs a CatalogRepo backed by the provided db connection.
func NewCatalogRepo(db db) CatalogRepo {
	return &pgCatalogRepo{db: db}
}

const catalogColumns = `id, name, cost, created_at, updated_at`

func (r *pgCatalogRepo) Create(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error) {
	const q = `
		INSERT INTO service_items (id, name, cost)
		VALUES (@id, @name, @cost)
		RETURNING ` + catalogColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": item.ID, "name": item.Name, "cost": item.Cost})
	result, err := scanCatalogItem(row)
	if err != nil {
		return domain.ServiceItem{}, fmt.Errorf("repo.CatalogRepo.Create: %w", mapUnique(err))
	}
	return result, nil
}

func (r *pgCatalogRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceItem, error) {
	const q = `SELECT ` + catalogColumns + ` FROM service_items WHERE id = @id`

	result, err := scanCatalogItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ServiceItem{}, fmt.Errorf("repo.CatalogRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgCatalogRepo) List(ctx context.Context) ([]domain.ServiceItem, error) {
	const q = `SELECT ` + catalogColumns + ` FROM service_items ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.List: %w", err)
	}
	defer rows.Close()

	items := []domain.ServiceItem{}
	for rows.Next() {
		it, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CatalogRepo.List: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.List: rows: %w", err)
	}
	return items, nil
}

func (r *pgCatalogRepo) Update(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error) {
	const q = `
		UPDATE service_items
		SET name       = @name,
		    cost       = @cost,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + catalogColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": item.ID, "name": item.Name, "cost": item.Cost})
	result, err := scanCatalogItem(row)
	if err != nil {
		return domain.ServiceItem{}, fmt.Errorf("repo.CatalogRepo.Update: %w", mapUnique(err))
	}
	return result, nil
}

func scanCatalogItem(s scanner) (domain.ServiceItem, error) {
	var it domain.ServiceItem
	if err := s.Scan(&it.ID, &it.Name, &it.Cost, &it.CreatedAt, &it.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ServiceItem{}, domain.ErrNotFound
		}
		return domain.ServiceItem{}, err
	}
	return it, nil
}

// mapUnique turns a unique constraint violation into domain.ErrConflict.
func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Detail)
	}
	return err
}
