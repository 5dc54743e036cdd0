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

// RefuelRepo defines the persistence operations for refuel stations and visits.
type RefuelRepo interface {
	CreateStation(ctx context.Context, s domain.RefuelStation) (domain.RefuelStation, error)
	ListStations(ctx context.Context) ([]domain.RefuelStation, error)
	DeleteStation(ctx context.Context, id uuid.UUID) error

	CreateVisit(ctx context.Context, v domain.RefuelVisit) (domain.RefuelVisit, error)
	// ListVisits returns matching refuel visits ordered by date, oldest first.
	ListVisits(ctx context.Context, f VisitFilter) ([]domain.RefuelVisit, error)

	// UnlinkStation clears the station reference on its refuel visits.
	UnlinkStation(ctx context.Context, stationID uuid.UUID) (int64, error)
	// UnlinkVehicle clears the vehicle reference on its refuel visits.
	UnlinkVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}

type pgRefuelRepo struct {
	db db
}

// NewRefuelRepo constructs a RefuelRepo backed by the provided db connection.
func NewRefuelRepo(db db) RefuelRepo {
	return &pgRefuelRepo{db: db}
}

func (r *pgRefuelRepo) CreateStation(ctx context.Context, s domain.RefuelStation) (domain.RefuelStation, error) {
	const q = `
		INSERT INTO refuel_stations (id, name, location)
		VALUES (@id, @name, @location)
		RETURNING id, name, location, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": s.ID, "name": s.Name, "location": s.Location})
	var out domain.RefuelStation
	if err := row.Scan(&out.ID, &out.Name, &out.Location, &out.CreatedAt); err != nil {
		return domain.RefuelStation{}, fmt.Errorf("repo.RefuelRepo.CreateStation: %w", err)
	}
	return out, nil
}

func (r *pgRefuelRepo) ListStations(ctx context.Context) ([]domain.RefuelStation, error) {
	const q = `SELECT id, name, location, created_at FROM refuel_stations ORDER BY name, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RefuelRepo.ListStations: %w", err)
	}
	defer rows.Close()

	stations := []domain.RefuelStation{}
	for rows.Next() {
		var s domain.RefuelStation
		if err := rows.Scan(&s.ID, &s.Name, &s.Location, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.RefuelRepo.ListStations: scan: %w", err)
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RefuelRepo.ListStations: rows: %w", err)
	}
	return stations, nil
}

func (r *pgRefuelRepo) DeleteStation(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM refuel_stations WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RefuelRepo.DeleteStation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RefuelRepo.DeleteStation: %w", domain.ErrNotFound)
	}
	return nil
}

const refuelColumns = `id, odometer, visit_date, gallons, cost_per_gallon, car_wash_cost, total, vehicle_id, station_id, created_at`

func (r *pgRefuelRepo) CreateVisit(ctx context.Context, v domain.RefuelVisit) (domain.RefuelVisit, error) {
	const q = `
		INSERT INTO refuel_visits (id, odometer, visit_date, gallons, cost_per_gallon, car_wash_cost, total, vehicle_id, station_id)
		VALUES (@id, @odometer, @visit_date, @gallons, @cost_per_gallon, @car_wash_cost, @total, @vehicle_id, @station_id)
		RETURNING ` + refuelColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":              v.ID,
		"odometer":        v.Odometer,
		"visit_date":      v.Date,
		"gallons":         v.Gallons,
		"cost_per_gallon": v.CostPerGallon,
		"car_wash_cost":   v.CarWashCost,
		"total":           v.Total,
		"vehicle_id":      v.VehicleID,
		"station_id":      v.StationID,
	})
	out, err := scanRefuelVisit(row)
	if err != nil {
		return domain.RefuelVisit{}, fmt.Errorf("repo.RefuelRepo.CreateVisit: %w", err)
	}
	return out, nil
}

func (r *pgRefuelRepo) ListVisits(ctx context.Context, f VisitFilter) ([]domain.RefuelVisit, error) {
	const q = `
		SELECT ` + refuelColumns + `
		FROM refuel_visits
		WHERE (@vehicle_id::uuid IS NULL OR vehicle_id = @vehicle_id)
		ORDER BY visit_date, id`

	rows, err := r.db.Query(ctx, q, f.args())
	if err != nil {
		return nil, fmt.Errorf("repo.RefuelRepo.ListVisits: %w", err)
	}
	defer rows.Close()

	visits := []domain.RefuelVisit{}
	for rows.Next() {
		v, err := scanRefuelVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RefuelRepo.ListVisits: scan: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RefuelRepo.ListVisits: rows: %w", err)
	}
	return visits, nil
}

func (r *pgRefuelRepo) UnlinkStation(ctx context.Context, stationID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE refuel_visits SET station_id = NULL WHERE station_id = @id`, pgx.NamedArgs{"id": stationID})
	if err != nil {
		return 0, fmt.Errorf("repo.RefuelRepo.UnlinkStation: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgRefuelRepo) UnlinkVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE refuel_visits SET vehicle_id = NULL WHERE vehicle_id = @id`, pgx.NamedArgs{"id": vehicleID})
	if err != nil {
		return 0, fmt.Errorf("repo.RefuelRepo.UnlinkVehicle: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRefuelVisit(s scanner) (domain.RefuelVisit, error) {
	var (
		v                    domain.RefuelVisit
		vehicleID, stationID pgtype.UUID
	)
	err := s.Scan(&v.ID, &v.Odometer, &v.Date, &v.Gallons, &v.CostPerGallon, &v.CarWashCost,
		&v.Total, &vehicleID, &stationID, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RefuelVisit{}, domain.ErrNotFound
		}
		return domain.RefuelVisit{}, err
	}
	v.VehicleID = uuidPtr(vehicleID)
	v.StationID = uuidPtr(stationID)
	return v, nil
}
