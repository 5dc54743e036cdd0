// Package repo contains all database access logic for the vehicle logbook.
// Each aggregate has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxDB is a db that can also start a transaction.
// *pgxpool.Pool and pgx.Tx (as a savepoint) both satisfy it.
type TxDB interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos groups every repository bound to the same connection or transaction.
type Repos struct {
	Vehicles  VehicleRepo
	Providers ProviderRepo
	Catalog   CatalogRepo
	Visits    ServiceVisitRepo
	Refuels   RefuelRepo
	Data      DataRepo
}

// NewRepos binds all repositories to conn.
func NewRepos(conn db) Repos {
	return Repos{
		Vehicles:  NewVehicleRepo(conn),
		Providers: NewProviderRepo(conn),
		Catalog:   NewCatalogRepo(conn),
		Visits:    NewServiceVisitRepo(conn),
		Refuels:   NewRefuelRepo(conn),
		Data:      NewDataRepo(conn),
	}
}

// Store hands out repositories and runs multi-statement work in a transaction.
type Store struct {
	conn TxDB
}

// NewStore constructs a Store backed by conn.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStore(conn TxDB) *Store {
	return &Store{conn: conn}
}

// Repos returns repositories that run each statement on its own.
func (s *Store) Repos() Repos {
	return NewRepos(s.conn)
}

// WithTx runs fn with repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(Repos) error) error {
	err := pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.Store.WithTx: %w", err)
	}
	return nil
}

// DataRepo holds whole-dataset operations.
type DataRepo interface {
	// PurgeAll deletes every visit, line item, catalog item, provider,
	// station and vehicle. Only the destructive import replace uses it.
	PurgeAll(ctx context.Context) error
}

type pgDataRepo struct {
	db db
}

// NewDataRepo constructs a DataRepo backed by the provided db connection.
func NewDataRepo(db db) DataRepo {
	return &pgDataRepo{db: db}
}

// PurgeAll removes owned rows before the rows they reference.
func (r *pgDataRepo) PurgeAll(ctx context.Context) error {
	for _, table := range []string{
		"saved_service_items",
		"service_visits",
		"refuel_visits",
		"refuel_stations",
		"service_items",
		"service_providers",
		"vehicles",
	} {
		if _, err := r.db.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("repo.DataRepo.PurgeAll: %s: %w", table, err)
		}
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// uuidPtr converts a nullable UUID column to a *uuid.UUID.
func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}
