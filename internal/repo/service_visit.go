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

// VisitFilter narrows a visit listing. A nil VehicleID lists every visit.
type VisitFilter struct {
	VehicleID *uuid.UUID
}

func (f VisitFilter) args() pgx.NamedArgs {
	return pgx.NamedArgs{"vehicle_id": f.VehicleID}
}

// ServiceVisitRepo defines the persistence operations for ServiceVisits and
// their line items. Visits are always read and written together with their items.
type ServiceVisitRepo interface {
	// Create inserts the visit and its line items. Items keep their order.
	Create(ctx context.Context, v domain.ServiceVisit) (domain.ServiceVisit, error)

	// GetByID returns a visit with its items, or domain.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceVisit, error)

	// List returns every matching visit ordered by date, oldest first.
	List(ctx context.Context, f VisitFilter) ([]domain.ServiceVisit, error)

	// ListPaged returns one page of matching visits, newest first, plus the
	// total number of matching visits.
	ListPaged(ctx context.Context, f VisitFilter, p domain.PaginationParams) ([]domain.ServiceVisit, int64, error)

	// Update overwrites the visit and replaces its line items.
	Update(ctx context.Context, v domain.ServiceVisit) (domain.ServiceVisit, error)

	// Delete removes a visit; its line items go with it.
	Delete(ctx context.Context, id uuid.UUID) error

	// UnlinkVehicle clears the vehicle reference on every visit of vehicleID.
	UnlinkVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)

	// UnlinkProvider clears the provider reference on every visit of providerID.
	UnlinkProvider(ctx context.Context, providerID uuid.UUID) (int64, error)
}

type pgServiceVisitRepo struct {
	db db
}

// NewServiceVisitRepo constructs a ServiceVisitRepo backed by the provided db connection.
func NewServiceVisitRepo(db db) ServiceVisitRepo {
	return &pgServiceVisitRepo{db: db}
}

const visitColumns = `id, visit_date, mileage, cost, tax, discount, total, notes, photo, vehicle_id, provider_id, created_at, updated_at`

func (r *pgServiceVisitRepo) Create(ctx context.Context, v domain.ServiceVisit) (domain.ServiceVisit, error) {
	const q = `
		INSERT INTO service_visits (id, visit_date, mileage, cost, tax, discount, total, notes, photo, vehicle_id, provider_id)
		VALUES (@id, @visit_date, @mileage, @cost, @tax, @discount, @total, @notes, @photo, @vehicle_id, @provider_id)
		RETURNING ` + visitColumns

	result, err := scanVisit(r.db.QueryRow(ctx, q, visitArgs(v)))
	if err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("repo.ServiceVisitRepo.Create: %w", err)
	}
	if result.Items, err = r.insertItems(ctx, result.ID, v.Items); err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("repo.ServiceVisitRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgServiceVisitRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceVisit, error) {
	const q = `SELECT ` + visitColumns + ` FROM service_visits WHERE id = @id`

	v, err := scanVisit(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("repo.ServiceVisitRepo.GetByID: %w", err)
	}
	visits := []domain.ServiceVisit{v}
	if err := r.attachItems(ctx, visits); err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("repo.ServiceVisitRepo.GetByID: %w", err)
	}
	return visits[0], nil
}

func (r *pgServiceVisitRepo) List(ctx context.Context, f VisitFilter) ([]domain.ServiceVisit, error) {
	const q = `
		SELECT ` + visitColumns + `
		FROM service_visits
		WHERE (@vehicle_id::uuid IS NULL OR vehicle_id = @vehicle_id)
		ORDER BY visit_date, id`

	visits, err := r.query(ctx, q, f.args())
	if err != nil {
		return nil, fmt.Errorf("repo.ServiceVisitRepo.List: %w", err)
	}
	return visits, nil
}

func (r *pgServiceVisitRepo) ListPaged(ctx context.Context, f VisitFilter, p domain.PaginationParams) ([]domain.ServiceVisit, int64, error) {
	const countQ = `
		SELECT count(*)
		FROM service_visits
		WHERE (@vehicle_id::uuid IS NULL OR vehicle_id = @vehicle_id)`

	const q = `
		SELECT ` + visitColumns + `
		FROM service_visits
		WHERE (@vehicle_id::uuid IS NULL OR vehicle_id = @vehicle_id)
		ORDER BY visit_date DESC, id
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, f.args()).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ServiceVisitRepo.ListPaged: count: %w", err)
	}

	args := f.args()
	args["limit"] = p.Limit
	args["offset"] = p.Offset()
	visits, err := r.query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ServiceVisitRepo.ListPaged: %w", err)
	}
	return visits, total, nil
}

func (r *pgServiceVisitRepo) Update(ctx context.Context, v domain.ServiceVisit) (domain.ServiceVisit, error) {
	const q = `
		UPDATE service_visits
		SET visit_date  = @visit_date,
		    mileage     = @mileage,
		    cost        = @cost,
		    tax         = @tax,
		    discount    = @discount,
		    total       = @total,
		    notes       = @notes,
		    photo       = @photo,
		    vehicle_id  = @vehicle_id,
		    provider_id = @provider_id,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + visitColumns

	result, err := scanVisit(r.db.QueryRow(ctx, q, visitArgs(v)))
	if err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("repo.ServiceVisitRepo.Update: %w", err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM saved_service_items WHERE visit_id = @id`, pgx.NamedArgs{"id": v.ID}); err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("repo.ServiceVisitRepo.Update: clear items: %w", err)
	}
	if result.Items, err = r.insertItems(ctx, result.ID, v.Items); err != nil {
		return domain.ServiceVisit{}, fmt.Errorf("repo.ServiceVisitRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgServiceVisitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM service_visits WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ServiceVisitRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ServiceVisitRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgServiceVisitRepo) UnlinkVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	const q = `UPDATE service_visits SET vehicle_id = NULL, updated_at = now() WHERE vehicle_id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": vehicleID})
	if err != nil {
		return 0, fmt.Errorf("repo.ServiceVisitRepo.UnlinkVehicle: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *pgServiceVisitRepo) UnlinkProvider(ctx context.Context, providerID uuid.UUID) (int64, error) {
	const q = `UPDATE service_visits SET provider_id = NULL, updated_at = now() WHERE provider_id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": providerID})
	if err != nil {
		return 0, fmt.Errorf("repo.ServiceVisitRepo.UnlinkProvider: %w", err)
	}
	return tag.RowsAffected(), nil
}

// query runs a visit SELECT and attaches line items to every result.
func (r *pgServiceVisitRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.ServiceVisit, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	visits := []domain.ServiceVisit{}
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	rows.Close()

	if err := r.attachItems(ctx, visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// attachItems loads the line items of all visits in one query.
func (r *pgServiceVisitRepo) attachItems(ctx context.Context, visits []domain.ServiceVisit) error {
	if len(visits) == 0 {
		return nil
	}
	ids := make([]string, len(visits))
	index := make(map[uuid.UUID]int, len(visits))
	for i, v := range visits {
		ids[i] = v.ID.String()
		index[v.ID] = i
		visits[i].Items = []domain.SavedServiceItem{}
	}

	const q = `
		SELECT id, visit_id, name, cost, position
		FROM saved_service_items
		WHERE visit_id = ANY(@ids::uuid[])
		ORDER BY visit_id, position, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return fmt.Errorf("items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanSavedItem(rows)
		if err != nil {
			return fmt.Errorf("items: scan: %w", err)
		}
		if i, ok := index[*it.VisitID]; ok {
			visits[i].Items = append(visits[i].Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("items: rows: %w", err)
	}
	return nil
}

// insertItems writes items for visitID, numbering positions in slice order.
func (r *pgServiceVisitRepo) insertItems(ctx context.Context, visitID uuid.UUID, items []domain.SavedServiceItem) ([]domain.SavedServiceItem, error) {
	const q = `
		INSERT INTO saved_service_items (id, visit_id, name, cost, position)
		VALUES (@id, @visit_id, @name, @cost, @position)
		RETURNING id, visit_id, name, cost, position`

	saved := make([]domain.SavedServiceItem, 0, len(items))
	for i, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
			"id":       it.ID,
			"visit_id": visitID,
			"name":     it.Name,
			"cost":     it.Cost,
			"position": i,
		})
		s, err := scanSavedItem(row)
		if err != nil {
			return nil, fmt.Errorf("insert item %d: %w", i, err)
		}
		saved = append(saved, s)
	}
	return saved, nil
}

func visitArgs(v domain.ServiceVisit) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":          v.ID,
		"visit_date":  v.Date,
		"mileage":     v.Mileage,
		"cost":        v.Cost,
		"tax":         v.Tax,
		"discount":    v.Discount,
		"total":       v.Total,
		"notes":       v.Notes,
		"photo":       v.Photo,
		"vehicle_id":  v.VehicleID,
		"provider_id": v.ProviderID,
	}
}

func scanVisit(s scanner) (domain.ServiceVisit, error) {
	var (
		v                     domain.ServiceVisit
		vehicleID, providerID pgtype.UUID
	)
	err := s.Scan(&v.ID, &v.Date, &v.Mileage, &v.Cost, &v.Tax, &v.Discount, &v.Total,
		&v.Notes, &v.Photo, &vehicleID, &providerID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ServiceVisit{}, domain.ErrNotFound
		}
		return domain.ServiceVisit{}, err
	}
	v.VehicleID = uuidPtr(vehicleID)
	v.ProviderID = uuidPtr(providerID)
	return v, nil
}

func scanSavedItem(s scanner) (domain.SavedServiceItem, error) {
	var (
		it      domain.SavedServiceItem
		visitID pgtype.UUID
	)
	if err := s.Scan(&it.ID, &visitID, &it.Name, &it.Cost, &it.Position); err != nil {
		return domain.SavedServiceItem{}, err
	}
	it.VisitID = uuidPtr(visitID)
	return it, nil
}
