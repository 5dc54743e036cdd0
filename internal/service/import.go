package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pkordes/vehicle-logbook/backend/internal/csvcodec"
	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/interchange"
	"github.com/pkordes/vehicle-logbook/backend/internal/metrics"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
)

// ImportOptions configures an ImportService. Zero values are usable.
type ImportOptions struct {
	// Mode is the default parse mode when a request does not choose one.
	Mode domain.ParseMode
	// Location is the calendar dates are parsed in and compared by.
	Location *time.Location
	// Images resolves image file names for newly created vehicles.
	Images interchange.ImageSource
	// Now stands in for unparsable dates in lenient mode.
	Now     func() time.Time
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// ImportRequest holds per-call import choices.
type ImportRequest struct {
	// Mode overrides the service default when non-empty.
	Mode domain.ParseMode
	// Replace purges every stored record before the rows are added.
	Replace bool
}

// ImportService merges interchange CSV files into the store.
type ImportService struct {
	store Store
	opts  ImportOptions
}

// NewImportService constructs an ImportService.
func NewImportService(store Store, opts ImportOptions) *ImportService {
	if opts.Mode == "" {
		opts.Mode = domain.ParseLenient
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ImportService{store: store, opts: opts}
}

type decodedRow struct {
	line int
	row  domain.ExportRow
}

// Import decodes src and adds every new vehicle, provider, catalog item and
// visit in one transaction. Malformed and duplicate rows are counted and
// skipped; a read or store failure aborts the whole import.
func (s *ImportService) Import(ctx context.Context, src io.Reader, req ImportRequest) (domain.ImportResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = s.opts.Mode
	}

	rows, skips, err := s.decode(src, mode)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("service.ImportService.Import: %w", err)
	}

	decoded := len(rows) + len(skips)

	var plan interchange.Plan
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		var snap interchange.Snapshot
		if req.Replace {
			if err := r.Data.PurgeAll(ctx); err != nil {
				return err
			}
		} else {
			var err error
			if snap, err = loadSnapshot(ctx, r); err != nil {
				return err
			}
		}

		m := interchange.NewMerger(snap, interchange.MergeOptions{
			Images:   s.opts.Images,
			Location: s.opts.Location,
			Logger:   s.opts.Logger,
		})
		for _, d := range rows {
			m.Add(d.line, d.row)
		}
		plan = m.Plan()
		return persistPlan(ctx, r, plan)
	})
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("service.ImportService.Import: %w", err)
	}

	skips = append(skips, plan.Skipped...)
	for _, skip := range plan.Skipped {
		s.opts.Logger.WarnContext(ctx, "import row skipped", "line", skip.Line, "reason", skip.Reason)
	}

	result := domain.ImportResult{
		Rows:           decoded,
		Imported:       len(plan.NewVisits),
		Duplicates:     plan.Duplicates,
		Skipped:        len(skips),
		SkippedReasons: skips,
		NewVehicles:    len(plan.NewVehicles),
		NewProviders:   len(plan.NewProviders),
		NewItems:       len(plan.NewItems),
		Replaced:       req.Replace,
	}
	if result.SkippedReasons == nil {
		result.SkippedReasons = []domain.SkipReason{}
	}

	s.opts.Metrics.AddRows(metrics.DirectionImport, metrics.OutcomeImported, result.Imported)
	s.opts.Metrics.AddRows(metrics.DirectionImport, metrics.OutcomeDuplicate, result.Duplicates)
	s.opts.Metrics.AddRows(metrics.DirectionImport, metrics.OutcomeSkipped, result.Skipped)
	s.opts.Logger.InfoContext(ctx, "import finished",
		"rows", result.Rows,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"skipped", result.Skipped,
		"replaced", result.Replaced,
	)
	return result, nil
}

// decode reads every row before the store is touched.
func (s *ImportService) decode(src io.Reader, mode domain.ParseMode) ([]decodedRow, []domain.SkipReason, error) {
	reader := csvcodec.NewReader(src,
		csvcodec.WithMode(mode),
		csvcodec.WithClock(s.opts.Now),
		csvcodec.WithLocation(s.opts.Location),
	)

	var (
		rows  []decodedRow
		skips []domain.SkipReason
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, skips, nil
		}
		var rowErr *csvcodec.RowError
		if errors.As(err, &rowErr) {
			s.opts.Logger.Warn("import row skipped", "line", rowErr.Line, "reason", rowErr.Reason)
			skips = append(skips, rowErr.SkipReason())
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("decode: %w", err)
		}
		rows = append(rows, decodedRow{line: reader.Line(), row: row})
	}
}

func loadSnapshot(ctx context.Context, r repo.Repos) (interchange.Snapshot, error) {
	var (
		snap interchange.Snapshot
		err  error
	)
	if snap.Vehicles, err = r.Vehicles.List(ctx); err != nil {
		return interchange.Snapshot{}, err
	}
	if snap.Providers, err = r.Providers.List(ctx); err != nil {
		return interchange.Snapshot{}, err
	}
	if snap.Items, err = r.Catalog.List(ctx); err != nil {
		return interchange.Snapshot{}, err
	}
	if snap.Visits, err = r.Visits.List(ctx, repo.VisitFilter{}); err != nil {
		return interchange.Snapshot{}, err
	}
	return snap, nil
}

// persistPlan inserts referenced rows before the visits that point at them.
func persistPlan(ctx context.Context, r repo.Repos, plan interchange.Plan) error {
	for _, v := range plan.NewVehicles {
		if _, err := r.Vehicles.Create(ctx, v); err != nil {
			return err
		}
	}
	for _, p := range plan.NewProviders {
		if _, err := r.Providers.Create(ctx, p); err != nil {
			return err
		}
	}
	for _, it := range plan.NewItems {
		if _, err := r.Catalog.Create(ctx, it); err != nil {
			return err
		}
	}
	for _, v := range plan.NewVisits {
		if _, err := r.Visits.Create(ctx, v); err != nil {
			return err
		}
	}
	return nil
}
