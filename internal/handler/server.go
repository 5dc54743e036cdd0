// Package handler implements the HTTP handlers for the vehicle logbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (vehicle.go, visit.go, interchange.go, etc.) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/vehicle-logbook/backend/internal/analytics"
	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/fueleconomy"
	"github.com/pkordes/vehicle-logbook/backend/internal/service"
)

// The servicer interfaces below are defined here, in the consumer package,
// so handler tests can inject mocks without a database or service layer.

// VehicleServicer defines the vehicle operations the handlers depend on.
type VehicleServicer interface {
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	List(ctx context.Context) ([]domain.Vehicle, error)
	Update(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	SetPhoto(ctx context.Context, id uuid.UUID, data []byte) (domain.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProviderServicer defines the service provider operations.
type ProviderServicer interface {
	Create(ctx context.Context, p domain.ServiceProvider) (domain.ServiceProvider, error)
	List(ctx context.Context) ([]domain.ServiceProvider, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CatalogServicer defines the catalog operations.
type CatalogServicer interface {
	Create(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error)
	List(ctx context.Context) ([]domain.ServiceItem, error)
	Update(ctx context.Context, item domain.ServiceItem) (domain.ServiceItem, error)
}

// VisitServicer defines the service visit operations.
type VisitServicer interface {
	Create(ctx context.Context, in service.VisitInput) (domain.ServiceVisit, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.ServiceVisit, error)
	List(ctx context.Context, vehicleID *uuid.UUID, p domain.PaginationParams) ([]domain.ServiceVisit, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RefuelServicer defines the refuel station and visit operations.
type RefuelServicer interface {
	CreateStation(ctx context.Context, s domain.RefuelStation) (domain.RefuelStation, error)
	ListStations(ctx context.Context) ([]domain.RefuelStation, error)
	DeleteStation(ctx context.Context, id uuid.UUID) error
	CreateVisit(ctx context.Context, v domain.RefuelVisit) (domain.RefuelVisit, error)
	ListVisits(ctx context.Context, vehicleID *uuid.UUID) ([]domain.RefuelVisit, error)
	FuelEconomy(ctx context.Context, vehicleID uuid.UUID) (fueleconomy.Report, error)
}

// AnalyticsServicer defines the cost report operations.
type AnalyticsServicer interface {
	ServiceCosts(ctx context.Context, vehicleID *uuid.UUID) (analytics.Report, error)
	FuelCosts(ctx context.Context, vehicleID *uuid.UUID) (analytics.Report, error)
}

// ExportServicer defines the export operations.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, domain.ExportManifest, error)
	ExportToDir(ctx context.Context, dir string) (domain.ExportManifest, error)
}

// ImportServicer defines the import operation.
type ImportServicer interface {
	Import(ctx context.Context, src io.Reader, req service.ImportRequest) (domain.ImportResult, error)
}

// Services bundles every dependency of Server. Nil members leave their
// routes unregistered, which keeps focused handler tests small.
type Services struct {
	Vehicles  VehicleServicer
	Providers ProviderServicer
	Catalog   CatalogServicer
	Visits    VisitServicer
	Refuels   RefuelServicer
	Analytics AnalyticsServicer
	Export    ExportServicer
	Import    ImportServicer
}

// Options holds non-service settings.
type Options struct {
	// Location is the calendar used for request and response dates.
	Location *time.Location
	// ExportDir is where POST /export/files writes.
	ExportDir string
	// OpenAPI is served verbatim at /openapi.yaml when non-empty.
	OpenAPI []byte
	// InterchangeLimit wraps POST /import and POST /export/files, the
	// routes that write to disk or purge data. Nil applies no limit.
	InterchangeLimit func(http.Handler) http.Handler
	Logger           *slog.Logger
}

// Server holds the handler dependencies.
type Server struct {
	svc  Services
	opts Options
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.InterchangeLimit == nil {
		opts.InterchangeLimit = func(next http.Handler) http.Handler { return next }
	}
	return &Server{svc: svc, opts: opts}
}

// Routes returns a chi router with every API route registered.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.getHealth)
	if len(s.opts.OpenAPI) > 0 {
		r.Get("/openapi.yaml", s.getOpenAPI)
	}

	if s.svc.Vehicles != nil {
		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", s.listVehicles)
			r.Post("/", s.createVehicle)
			r.Route("/{vehicleId}", func(r chi.Router) {
				r.Get("/", s.getVehicle)
				r.Put("/", s.updateVehicle)
				r.Delete("/", s.deleteVehicle)
				r.Get("/photo", s.getVehiclePhoto)
				r.Put("/photo", s.putVehiclePhoto)
				if s.svc.Refuels != nil {
					r.Get("/fuel-economy", s.getFuelEconomy)
				}
			})
		})
	}
	if s.svc.Providers != nil {
		r.Get("/providers", s.listProviders)
		r.Post("/providers", s.createProvider)
		r.Delete("/providers/{providerId}", s.deleteProvider)
	}
	if s.svc.Catalog != nil {
		r.Get("/catalog-items", s.listCatalogItems)
		r.Post("/catalog-items", s.createCatalogItem)
		r.Put("/catalog-items/{itemId}", s.updateCatalogItem)
	}
	if s.svc.Visits != nil {
		r.Get("/service-visits", s.listVisits)
		r.Post("/service-visits", s.createVisit)
		r.Get("/service-visits/{visitId}", s.getVisit)
		r.Delete("/service-visits/{visitId}", s.deleteVisit)
	}
	if s.svc.Refuels != nil {
		r.Get("/refuel-stations", s.listStations)
		r.Post("/refuel-stations", s.createStation)
		r.Delete("/refuel-stations/{stationId}", s.deleteStation)
		r.Get("/refuel-visits", s.listRefuelVisits)
		r.Post("/refuel-visits", s.createRefuelVisit)
	}
	if s.svc.Analytics != nil {
		r.Get("/analytics/service-costs", s.getServiceCosts)
		r.Get("/analytics/fuel-costs", s.getFuelCosts)
	}
	if s.svc.Export != nil {
		r.Get("/export", s.getExport)
		r.With(s.opts.InterchangeLimit).Post("/export/files", s.postExportFiles)
	}
	if s.svc.Import != nil {
		r.With(s.opts.InterchangeLimit).Post("/import", s.postImport)
	}
	return r
}

func (s *Server) getOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(s.opts.OpenAPI)
}
