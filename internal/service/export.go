package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkordes/vehicle-logbook/backend/internal/csvcodec"
	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/imagestore"
	"github.com/pkordes/vehicle-logbook/backend/internal/interchange"
	"github.com/pkordes/vehicle-logbook/backend/internal/metrics"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
)

// ExportFilename is the CSV file written by ExportToDir.
const ExportFilename = "ServiceRecords.csv"

// ExportOptions configures an ExportService. Zero values are usable.
type ExportOptions struct {
	// Location is the calendar used to format visit dates.
	Location *time.Location
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// ExportService flattens stored service visits into interchange rows.
type ExportService struct {
	store Store
	opts  ExportOptions
}

// NewExportService constructs an ExportService.
func NewExportService(store Store, opts ExportOptions) *ExportService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ExportService{store: store, opts: opts}
}

// Location returns the calendar export dates are written in.
func (s *ExportService) Location() *time.Location {
	return s.opts.Location
}

// Export returns one row per exportable visit, oldest first, plus a manifest
// of what was skipped. No image files are written.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, domain.ExportManifest, error) {
	rows, manifest, err := s.flatten(ctx, nil)
	if err != nil {
		return nil, domain.ExportManifest{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return rows, manifest, nil
}

// ExportToDir writes dir/ServiceRecords.csv and the vehicle photos under
// dir/ExportedImages. Files already written stay on disk if a later write fails.
func (s *ExportService) ExportToDir(ctx context.Context, dir string) (domain.ExportManifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.ExportManifest{}, fmt.Errorf("service.ExportService.ExportToDir: %w", err)
	}

	rows, manifest, err := s.flatten(ctx, imagestore.New(dir))
	if err != nil {
		return domain.ExportManifest{}, fmt.Errorf("service.ExportService.ExportToDir: %w", err)
	}

	path := filepath.Join(dir, ExportFilename)
	f, err := os.Create(path)
	if err != nil {
		return domain.ExportManifest{}, fmt.Errorf("service.ExportService.ExportToDir: %w", err)
	}
	if err := csvcodec.Encode(f, rows, s.opts.Location); err != nil {
		f.Close()
		return domain.ExportManifest{}, fmt.Errorf("service.ExportService.ExportToDir: %w", err)
	}
	if err := f.Close(); err != nil {
		return domain.ExportManifest{}, fmt.Errorf("service.ExportService.ExportToDir: %w", err)
	}

	manifest.Path = path
	s.opts.Logger.InfoContext(ctx, "export written",
		"path", path,
		"written", manifest.Written,
		"skipped", manifest.Skipped,
		"images", manifest.Images,
	)
	return manifest, nil
}

func (s *ExportService) flatten(ctx context.Context, images interchange.ImageSink) ([]domain.ExportRow, domain.ExportManifest, error) {
	var (
		vehicles  []domain.Vehicle
		providers []domain.ServiceProvider
		visits    []domain.ServiceVisit
	)
	// One transaction gives a consistent snapshot across the three reads.
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		var err error
		if vehicles, err = r.Vehicles.List(ctx); err != nil {
			return err
		}
		if providers, err = r.Providers.List(ctx); err != nil {
			return err
		}
		visits, err = r.Visits.List(ctx, repo.VisitFilter{})
		return err
	})
	if err != nil {
		return nil, domain.ExportManifest{}, err
	}

	rows, manifest := interchange.Flatten(visits, vehicles, providers, images, s.opts.Logger)
	for _, skip := range manifest.SkippedReasons {
		s.opts.Logger.WarnContext(ctx, "visit not exported", "visit_id", skip.Record, "reason", skip.Reason)
	}
	s.opts.Metrics.AddRows(metrics.DirectionExport, metrics.OutcomeWritten, manifest.Written)
	s.opts.Metrics.AddRows(metrics.DirectionExport, metrics.OutcomeSkipped, manifest.Skipped)
	return rows, manifest, nil
}
