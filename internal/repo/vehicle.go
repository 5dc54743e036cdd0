package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// VehicleRepo defines the persistence operations for Vehicles.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type VehicleRepo interface {
	// Create inserts a new vehicle with the ID it already carries and returns
	// the persisted record (with created_at and updated_at populated).
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)

	// GetByID retrieves a single vehicle by its UUID primary key.
	// Returns domain.ErrNotFound if no vehicle with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)

	// List returns all vehicles ordered by name, then model year.
	List(ctx context.Context) ([]domain.Vehicle, error)

	// Update overwrites the mutable fields of an existing vehicle and returns the
	// updated record. Returns domain.ErrNotFound if no vehicle with that ID exists.
	Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)

	// Delete removes a vehicle by ID. Returns domain.ErrNotFound if it does not exist.
	// Visits must be unlinked first; the foreign keys reject the delete otherwise.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgVehicleRepo is the Postgres implementation of VehicleRepo.
type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

const vehicleColumns = `id, name, model_year, vin, license, current_mileage, photo, created_at, updated_at`

// Create inserts a new vehicle row and returns the full persisted record.
func (r *pgVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		INSERT INTO vehicles (id, name, model_year, vin, license, current_mileage, photo)
		VALUES (@id, @name, @model_year, @vin, @license, @current_mileage, @photo)
		RETURNING ` + vehicleColumns

	row := r.db.QueryRow(ctx, q, vehicleArgs(v))
	result, err := scanVehicle(row)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a vehicle by primary key.
func (r *pgVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	const q = `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanVehicle(row)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all vehicles ordered by name and model year.
func (r *pgVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	const q = `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY name, model_year, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: %w", err)
	}
	defer rows.Close()

	vehicles := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.VehicleRepo.List: scan: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VehicleRepo.List: rows: %w", err)
	}
	return vehicles, nil
}

// Update overwrites the mutable fields of a vehicle and returns the updated record.
func (r *pgVehicleRepo) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	const q = `
		UPDATE vehicles
		SET name            = @name,
		    model_year      = @model_year,
		    vin             = @vin,
		    license         = @license,
		    current_mileage = @current_mileage,
		    photo           = @photo,
		    updated_at      = now()
		WHERE id = @id
		RETURNING ` + vehicleColumns

	row := r.db.QueryRow(ctx, q, vehicleArgs(v))
	result, err := scanVehicle(row)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("repo.VehicleRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a vehicle by primary key.
func (r *pgVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM vehicles WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.VehicleRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.VehicleRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func vehicleArgs(v domain.Vehicle) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":              v.ID,
		"name":            v.Name,
		"model_year":      v.ModelYear,
		"vin":             v.VIN,
		"license":         v.License,
		"current_mileage": v.CurrentMileage,
		"photo":           v.Photo, // nil becomes NULL
	}
}

// scanVehicle maps a single database row into a domain.Vehicle.
func scanVehicle(s scanner) (domain.Vehicle, error) {
	var (
		v  domain.Vehicle
		id pgtype.UUID
	)
	err := s.Scan(&id, &v.Name, &v.ModelYear, &v.VIN, &v.License, &v.CurrentMileage, &v.Photo, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vehicle{}, domain.ErrNotFound
		}
		return domain.Vehicle{}, err
	}
	v.ID = uuid.UUID(id.Bytes)
	return v, nil
}
