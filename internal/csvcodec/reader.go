package csvcodec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// RowError reports a row that was skipped. Reading may continue after it.
type RowError struct {
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("csvcodec: line %d: %s", e.Line, e.Reason)
}

// SkipReason converts the error to the form carried by import results.
func (e *RowError) SkipReason() domain.SkipReason {
	return domain.SkipReason{Line: e.Line, Reason: e.Reason}
}

// Option configures a Reader.
type Option func(*Reader)

// WithMode selects lenient (default) or strict field parsing.
func WithMode(m domain.ParseMode) Option {
	return func(r *Reader) { r.mode = m }
}

// WithClock sets the clock used for the lenient date fallback.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) { r.now = now }
}

// WithLocation sets the calendar dates are parsed in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Reader) { r.loc = loc }
}

// Reader decodes interchange CSV one row at a time.
type Reader struct {
	r          *csv.Reader
	mode       domain.ParseMode
	now        func() time.Time
	loc        *time.Location
	headerDone bool
	line       int
}

// NewReader returns a Reader over src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // short rows are reported per row, not as a fatal error
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	r := &Reader{r: cr, mode: domain.ParseLenient, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read returns the next data row.
// It returns io.EOF after the last row, a *RowError for a row that should be
// skipped, and any other error for an unrecoverable read failure.
func (r *Reader) Read() (domain.ExportRow, error) {
	if !r.headerDone {
		r.headerDone = true
		if _, err := r.next(); err != nil {
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				return domain.ExportRow{}, err
			}
		}
	}

	rec, err := r.next()
	if err != nil {
		return domain.ExportRow{}, err
	}
	line, _ := r.r.FieldPos(0)
	r.line = line
	if len(rec) < numColumns {
		return domain.ExportRow{}, &RowError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", numColumns, len(rec)),
		}
	}
	return r.parse(line, rec)
}

// Line returns the 1-based line on which the last data row started.
func (r *Reader) Line() int {
	return r.line
}

// next reads one raw record, turning malformed quoting into a RowError.
func (r *Reader) next() ([]string, error) {
	rec, err := r.r.Read()
	if err == nil {
		return rec, nil
	}
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return nil, &RowError{Line: perr.StartLine, Reason: perr.Err.Error()}
	}
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	return nil, fmt.Errorf("csvcodec.Reader.Read: %w", err)
}

func (r *Reader) parse(line int, rec []string) (domain.ExportRow, error) {
	var bad []string
	fail := func(field, value string) {
		bad = append(bad, fmt.Sprintf("invalid %s %q", field, value))
	}

	row := domain.ExportRow{
		Provider:      strings.TrimSpace(rec[colProvider]),
		ContactInfo:   strings.TrimSpace(rec[colContactInfo]),
		Vehicle:       strings.TrimSpace(rec[colVehicle]),
		VIN:           strings.TrimSpace(rec[colVIN]),
		License:       strings.TrimSpace(rec[colLicense]),
		ImageFilename: strings.TrimSpace(rec[colImageFilename]),
	}

	if d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(rec[colDate]), r.loc); err == nil {
		row.Date = d
	} else {
		fail("date", rec[colDate])
		row.Date = r.now()
	}

	var ok bool
	if row.Mileage, ok = parseInt(rec[colMileage]); !ok {
		fail("mileage", rec[colMileage])
	}
	if row.ModelYear, ok = parseInt(rec[colYear]); !ok {
		fail("year", rec[colYear])
	}
	if row.Cost, ok = parseFloat(rec[colCost]); !ok {
		fail("cost", rec[colCost])
	}

	names := splitList(rec[colItems])
	costs := splitList(rec[colItemsCost])
	for i, name := range names {
		name = domain.CatalogKey(name)
		if name == "" {
			continue
		}
		var cost float64
		if i < len(costs) {
			if cost, ok = parseFloat(costs[i]); !ok {
				fail("item cost", costs[i])
			}
		} else {
			bad = append(bad, fmt.Sprintf("missing cost for item %q", name))
		}
		row.ItemNames = append(row.ItemNames, name)
		row.ItemCosts = append(row.ItemCosts, cost)
	}

	if len(bad) > 0 && r.mode == domain.ParseStrict {
		return domain.ExportRow{}, &RowError{Line: line, Reason: strings.Join(bad, "; ")}
	}
	return row, nil
}

// Decode reads every row from src. Skipped rows are returned as reasons;
// the error is non-nil only for an unrecoverable read failure.
func Decode(src io.Reader, opts ...Option) ([]domain.ExportRow, []domain.SkipReason, error) {
	r := NewReader(src, opts...)
	var (
		rows  []domain.ExportRow
		skips []domain.SkipReason
	)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, skips, nil
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			skips = append(skips, rowErr.SkipReason())
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
}

// parseInt parses a trimmed integer, returning 0 and false on failure.
func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseFloat parses a trimmed float, returning 0 and false on failure.
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
