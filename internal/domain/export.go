package domain

import (
	"fmt"
	"strings"
	"time"
)

// ExportRow is a single row in the service-record interchange file.
// It is a flat, denormalized view of one service visit: vehicle and provider
// fields are repeated on every visit that references them.
//
// ItemNames and ItemCosts are positionally aligned.
type ExportRow struct {
	Date          time.Time
	Mileage       int
	Cost          float64
	ItemNames     []string
	ItemCosts     []float64
	Provider      string
	ContactInfo   string
	Vehicle       string
	ModelYear     int
	VIN           string
	License       string
	ImageFilename string // empty when the vehicle has no photo or the write failed
}

// VehicleKey returns the vehicle identity carried by the row.
func (r ExportRow) VehicleKey() VehicleKey {
	return VehicleKey{Name: r.Vehicle, ModelYear: r.ModelYear, VIN: r.VIN, License: r.License}
}

// ProviderKey returns the provider identity carried by the row.
func (r ExportRow) ProviderKey() ProviderKey {
	return ProviderKey{Name: r.Provider, ContactInfo: r.ContactInfo}
}

// SkipReason explains why a record or row was left out.
// Line is the 1-based line number for import rows, zero for export records.
type SkipReason struct {
	Line   int    `json:"line,omitempty"`
	Record string `json:"record,omitempty"`
	Reason string `json:"reason"`
}

func (s SkipReason) String() string {
	if s.Line > 0 {
		return fmt.Sprintf("line %d: %s", s.Line, s.Reason)
	}
	return fmt.Sprintf("%s: %s", s.Record, s.Reason)
}

// ExportManifest summarizes an export run.
type ExportManifest struct {
	Written        int          `json:"written"`
	Skipped        int          `json:"skipped"`
	SkippedReasons []SkipReason `json:"skipped_reasons"`
	Images         int          `json:"images"`
	Path           string       `json:"path,omitempty"`
}

// Skip records one skipped record.
func (m *ExportManifest) Skip(reason SkipReason) {
	m.Skipped++
	m.SkippedReasons = append(m.SkippedReasons, reason)
}

// ParseMode controls how the importer treats unparseable fields.
type ParseMode string

const (
	// ParseLenient substitutes defaults (now, 0, 0.0) for bad fields.
	ParseLenient ParseMode = "lenient"
	// ParseStrict skips any row with a bad field.
	ParseStrict ParseMode = "strict"
)

// ParseParseMode converts a string to a ParseMode. The empty string yields ParseLenient.
func ParseParseMode(s string) (ParseMode, error) {
	switch ParseMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ParseLenient:
		return ParseLenient, nil
	case ParseStrict:
		return ParseStrict, nil
	}
	return "", fmt.Errorf("%w: unknown import mode %q", ErrValidation, s)
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Rows           int          `json:"rows"`
	Imported       int          `json:"imported"`
	Duplicates     int          `json:"duplicates"`
	Skipped        int          `json:"skipped"`
	SkippedReasons []SkipReason `json:"skipped_reasons"`
	NewVehicles    int          `json:"new_vehicles"`
	NewProviders   int          `json:"new_providers"`
	NewItems       int          `json:"new_items"`
	Replaced       bool         `json:"replaced"`
}
