package csvcodec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
)

// Writer encodes domain.ExportRow values as interchange CSV.
// The header row is written by NewWriter, so an export with no rows still
// produces a valid file.
type Writer struct {
	w   *csv.Writer
	loc *time.Location
}

// NewWriter returns a Writer that formats dates in loc. A nil loc means UTC.
func NewWriter(w io.Writer, loc *time.Location) *Writer {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	// csv.Writer buffers; a failure here surfaces from Flush.
	_ = cw.Write(Header)
	return &Writer{w: cw, loc: loc}
}

// Write encodes one row.
func (w *Writer) Write(row domain.ExportRow) error {
	if err := w.w.Write(Record(row, w.loc)); err != nil {
		return fmt.Errorf("csvcodec.Writer.Write: %w", err)
	}
	return nil
}

// Flush writes any buffered data to the underlying writer and reports the
// first error seen by this Writer.
func (w *Writer) Flush() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("csvcodec.Writer.Flush: %w", err)
	}
	return nil
}

// Encode writes the header and all rows to w.
func Encode(w io.Writer, rows []domain.ExportRow, loc *time.Location) error {
	cw := NewWriter(w, loc)
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// Record converts a row to its twelve string fields.
func Record(row domain.ExportRow, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	costs := make([]string, len(row.ItemCosts))
	for i, c := range row.ItemCosts {
		costs[i] = FormatMoney(c)
	}

	rec := make([]string, numColumns)
	rec[colDate] = row.Date.In(loc).Format(DateLayout)
	rec[colMileage] = strconv.Itoa(row.Mileage)
	rec[colCost] = FormatMoney(row.Cost)
	rec[colItems] = strings.Join(row.ItemNames, ListSeparator)
	rec[colItemsCost] = strings.Join(costs, ListSeparator)
	rec[colProvider] = row.Provider
	rec[colContactInfo] = row.ContactInfo
	rec[colVehicle] = row.Vehicle
	rec[colYear] = strconv.Itoa(row.ModelYear)
	rec[colVIN] = row.VIN
	rec[colLicense] = row.License
	rec[colImageFilename] = row.ImageFilename
	return rec
}
