package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
	"github.com/pkordes/vehicle-logbook/backend/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs. Calling an unset one panics, which flags an unexpected call.

// ---- store -----------------------------------------------------------------

// fakeStore hands out the same repos inside and outside a transaction and
// counts transactions. A non-nil commitErr replaces the callback's nil result.
type fakeStore struct {
	repos     repo.Repos
	txCalls   int
	commitErr error
}

func (s *fakeStore) Repos() repo.Repos { return s.repos }

func (s *fakeStore) WithTx(ctx context.Context, fn func(repo.Repos) error) error {
	s.txCalls++
	if err := fn(s.repos); err != nil {
		return err
	}
	return s.commitErr
}

var _ service.Store = (*fakeStore)(nil)

// ---- vehicles --------------------------------------------------------------

type mockVehicleRepo struct {
	create  func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	list    func(ctx context.Context) ([]domain.Vehicle, error)
	update  func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVehicleRepo) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	return m.list(ctx)
}
func (m *mockVehicleRepo) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.update(ctx, v)
}
func (m *mockVehicleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.VehicleRepo = (*mockVehicleRepo)(nil)

// ---- providers -------------------------------------------------------------

type mockProviderRepo struct {
	create  func(ctx context.Context, p domain.ServiceProvider) (domain.ServiceProvider, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.ServiceProvider, error)
	list    func(ctx context.Context) ([]domain.ServiceProvider, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProviderRepo) Create(ctx context.Context, p domain.ServiceProvider) (domain.ServiceProvider, error) {
	return m.create(ctx, p)
}
func (m *mockProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceProvider, error) {
	return m.getByID(ctx, id)
}
func (m *mockProviderRepo) List(ctx context.Context) ([]domain.ServiceProvider, error) {
	return m.list(ctx)
}
func (m *mockProviderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.ProviderRepo = (*mockProviderRepo)(nil)

// ---- catalog ---------------------------------------------------------------

type mockCatalogRepo struct {
	create  func(ctx context.Context, it domain.ServiceItem) (domain.ServiceItem, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.ServiceItem, error)
	list    func(ctx context.Context) ([]domain.ServiceItem, error)
	update  func(ctx context.Context, it domain.ServiceItem) (domain.ServiceItem, error)
}

func (m *mockCatalogRepo) Create(ctx context.Context, it domain.ServiceItem) (domain.ServiceItem, error) {
	return m.create(ctx, it)
}
func (m *mockCatalogRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceItem, error) {
	return m.getByID(ctx, id)
}
func (m *mockCatalogRepo) List(ctx context.Context) ([]domain.ServiceItem, error) {
	return m.list(ctx)
}
func (m *mockCatalogRepo) Update(ctx context.Context, it domain.ServiceItem) (domain.ServiceItem, error) {
	return m.update(ctx, it)
}

var _ repo.CatalogRepo = (*mockCatalogRepo)(nil)

// ---- service visits --------------------------------------------------------

type mockVisitRepo struct {
	create         func(ctx context.Context, v domain.ServiceVisit) (domain.ServiceVisit, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.ServiceVisit, error)
	list           func(ctx context.Context, f repo.VisitFilter) ([]domain.ServiceVisit, error)
	listPaged      func(ctx context.Context, f repo.VisitFilter, p domain.PaginationParams) ([]domain.ServiceVisit, int64, error)
	update         func(ctx context.Context, v domain.ServiceVisit) (domain.ServiceVisit, error)
	delete         func(ctx context.Context, id uuid.UUID) error
	unlinkVehicle  func(ctx context.Context, id uuid.UUID) (int64, error)
	unlinkProvider func(ctx context.Context, id uuid.UUID) (int64, error)
}

func (m *mockVisitRepo) Create(ctx context.Context, v domain.ServiceVisit) (domain.ServiceVisit, error) {
	return m.create(ctx, v)
}
func (m *mockVisitRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceVisit, error) {
	return m.getByID(ctx, id)
}
func (m *mockVisitRepo) List(ctx context.Context, f repo.VisitFilter) ([]domain.ServiceVisit, error) {
	return m.list(ctx, f)
}
func (m *mockVisitRepo) ListPaged(ctx context.Context, f repo.VisitFilter, p domain.PaginationParams) ([]domain.ServiceVisit, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockVisitRepo) Update(ctx context.Context, v domain.ServiceVisit) (domain.ServiceVisit, error) {
	return m.update(ctx, v)
}
func (m *mockVisitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockVisitRepo) UnlinkVehicle(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.unlinkVehicle(ctx, id)
}
func (m *mockVisitRepo) UnlinkProvider(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.unlinkProvider(ctx, id)
}

var _ repo.ServiceVisitRepo = (*mockVisitRepo)(nil)

// ---- refuels ---------------------------------------------------------------

type mockRefuelRepo struct {
	createStation func(ctx context.Context, s domain.RefuelStation) (domain.RefuelStation, error)
	listStations  func(ctx context.Context) ([]domain.RefuelStation, error)
	deleteStation func(ctx context.Context, id uuid.UUID) error
	createVisit   func(ctx context.Context, v domain.RefuelVisit) (domain.RefuelVisit, error)
	listVisits    func(ctx context.Context, f repo.VisitFilter) ([]domain.RefuelVisit, error)
	unlinkStation func(ctx context.Context, id uuid.UUID) (int64, error)
	unlinkVehicle func(ctx context.Context, id uuid.UUID) (int64, error)
}

func (m *mockRefuelRepo) CreateStation(ctx context.Context, s domain.RefuelStation) (domain.RefuelStation, error) {
	return m.createStation(ctx, s)
}
func (m *mockRefuelRepo) ListStations(ctx context.Context) ([]domain.RefuelStation, error) {
	return m.listStations(ctx)
}
func (m *mockRefuelRepo) DeleteStation(ctx context.Context, id uuid.UUID) error {
	return m.deleteStation(ctx, id)
}
func (m *mockRefuelRepo) CreateVisit(ctx context.Context, v domain.RefuelVisit) (domain.RefuelVisit, error) {
	return m.createVisit(ctx, v)
}
func (m *mockRefuelRepo) ListVisits(ctx context.Context, f repo.VisitFilter) ([]domain.RefuelVisit, error) {
	return m.listVisits(ctx, f)
}
func (m *mockRefuelRepo) UnlinkStation(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.unlinkStation(ctx, id)
}
func (m *mockRefuelRepo) UnlinkVehicle(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.unlinkVehicle(ctx, id)
}

var _ repo.RefuelRepo = (*mockRefuelRepo)(nil)

// ---- data ------------------------------------------------------------------

type mockDataRepo struct {
	purgeAll func(ctx context.Context) error
}

func (m *mockDataRepo) PurgeAll(ctx context.Context) error { return m.purgeAll(ctx) }

var _ repo.DataRepo = (*mockDataRepo)(nil)
