package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vehicle-logbook/backend/internal/analytics"
	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/fueleconomy"
	"github.com/pkordes/vehicle-logbook/backend/internal/handler"
	"github.com/pkordes/vehicle-logbook/backend/internal/service"
)

// Each mock below is a test double for one handler servicer interface.
// Set only the method fields your test needs; an unset field panics,
// which flags an unexpected call.

type mockVehicleServicer struct {
	create   func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	getByID  func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	list     func(ctx context.Context) ([]domain.Vehicle, error)
	update   func(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	setPhoto func(ctx context.Context, id uuid.UUID, data []byte) (domain.Vehicle, error)
	delete   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVehicleServicer) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.create(ctx, v)
}
func (m *mockVehicleServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleServicer) List(ctx context.Context) ([]domain.Vehicle, error) {
	return m.list(ctx)
}
func (m *mockVehicleServicer) Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	return m.update(ctx, v)
}
func (m *mockVehicleServicer) SetPhoto(ctx context.Context, id uuid.UUID, data []byte) (domain.Vehicle, error) {
	return m.setPhoto(ctx, id, data)
}
func (m *mockVehicleServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.VehicleServicer = (*mockVehicleServicer)(nil)

type mockProviderServicer struct {
	create func(ctx context.Context, p domain.ServiceProvider) (domain.ServiceProvider, error)
	list   func(ctx context.Context) ([]domain.ServiceProvider, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProviderServicer) Create(ctx context.Context, p domain.ServiceProvider) (domain.ServiceProvider, error) {
	return m.create(ctx, p)
}
func (m *mockProviderServicer) List(ctx context.Context) ([]domain.ServiceProvider, error) {
	return m.list(ctx)
}
func (m *mockProviderServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.ProviderServicer = (*mockProviderServicer)(nil)

type mockCatalogServicer struct {
	create func(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error)
	list   func(ctx context.Context) ([]domain.ServiceItem, error)
	update func(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error)
}

func (m *mockCatalogServicer) Create(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error) {
	return m.create(ctx, item)
}
func (m *mockCatalogServicer) List(ctx context.Context) ([]domain.ServiceItem, error) {
	return m.list(ctx)
}
func (m *mockCatalogServicer) Update(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error) {
	return m.update(ctx, item)
}

var _ handler.CatalogServicer = (*mockCatalogServicer)(nil)

type mockVisitServicer struct {
	create  func(ctx context.Context, in service.VisitInput) (domain.ServiceVisit, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.ServiceVisit, error)
	list    func(ctx context.Context, vehicleID *uuid.UUID, p domain.PaginationParams) ([]domain.ServiceVisit, int64, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVisitServicer) Create(ctx context.Context, in service.VisitInput) (domain.ServiceVisit, error) {
	return m.create(ctx, in)
}
func (m *mockVisitServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceVisit, error) {
	return m.getByID(ctx, id)
}
func (m *mockVisitServicer) List(ctx context.Context, vehicleID *uuid.UUID, p domain.PaginationParams) ([]domain.ServiceVisit, int64, error) {
	return m.list(ctx, vehicleID, p)
}
func (m *mockVisitServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.VisitServicer = (*mockVisitServicer)(nil)

type mockRefuelServicer struct {
	createStation func(ctx context.Context, s domain.RefuelStation) (domain.RefuelStation, error)
	listStations  func(ctx context.Context) ([]domain.RefuelStation, error)
	deleteStation func(ctx context.Context, id uuid.UUID) error
	createVisit   func(ctx context.Context, v domain.RefuelVisit) (domain.RefuelVisit, error)
	listVisits    func(ctx context.Context, vehicleID *uuid.UUID) ([]domain.RefuelVisit, error)
	fuelEconomy   func(ctx context.Context, vehicleID uuid.UUID) (fueleconomy.Report, error)
}

func (m *mockRefuelServicer) CreateStation(ctx context.Context, s domain.RefuelStation) (domain.RefuelStation, error) {
	return m.createStation(ctx, s)
}
func (m *mockRefuelServicer) ListStations(ctx context.Context) ([]domain.RefuelStation, error) {
	return m.listStations(ctx)
}
func (m *mockRefuelServicer) DeleteStation(ctx context.Context, id uuid.UUID) error {
	return m.deleteStation(ctx, id)
}
func (m *mockRefuelServicer) CreateVisit(ctx context.Context, v domain.RefuelVisit) (domain.RefuelVisit, error) {
	return m.createVisit(ctx, v)
}
func (m *mockRefuelServicer) ListVisits(ctx context.Context, vehicleID *uuid.UUID) ([]domain.RefuelVisit, error) {
	return m.listVisits(ctx, vehicleID)
}
func (m *mockRefuelServicer) FuelEconomy(ctx context.Context, vehicleID uuid.UUID) (fueleconomy.Report, error) {
	return m.fuelEconomy(ctx, vehicleID)
}

var _ handler.RefuelServicer = (*mockRefuelServicer)(nil)

type mockAnalyticsServicer struct {
	serviceCosts func(ctx context.Context, vehicleID *uuid.UUID) (analytics.Report, error)
	fuelCosts    func(ctx context.Context, vehicleID *uuid.UUID) (analytics.Report, error)
}

func (m *mockAnalyticsServicer) ServiceCosts(ctx context.Context, vehicleID *uuid.UUID) (analytics.Report, error) {
	return m.serviceCosts(ctx, vehicleID)
}
func (m *mockAnalyticsServicer) FuelCosts(ctx context.Context, vehicleID *uuid.UUID) (analytics.Report, error) {
	return m.fuelCosts(ctx, vehicleID)
}

var _ handler.AnalyticsServicer = (*mockAnalyticsServicer)(nil)

type mockExportServicer struct {
	export      func(ctx context.Context) ([]domain.ExportRow, domain.ExportManifest, error)
	exportToDir func(ctx context.Context, dir string) (domain.ExportManifest, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, domain.ExportManifest, error) {
	return m.export(ctx)
}
func (m *mockExportServicer) ExportToDir(ctx context.Context, dir string) (domain.ExportManifest, error) {
	return m.exportToDir(ctx, dir)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

type mockImportServicer struct {
	importFn func(ctx context.Context, src io.Reader, req service.ImportRequest) (domain.ImportResult, error)
}

func (m *mockImportServicer) Import(ctx context.Context, src io.Reader, req service.ImportRequest) (domain.ImportResult, error) {
	return m.importFn(ctx, src, req)
}

var _ handler.ImportServicer = (*mockImportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given services into its router.
// This mirrors exactly how main.go wires it in production.
func newHTTPHandler(svc handler.Services, opts handler.Options) http.Handler {
	return handler.NewServer(svc, opts).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do performs one request against h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeError decodes an ErrorResponse body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}
