// Package domain contains the core data types for the vehicle logbook.
// This package depends only on uuid and is imported by every other
// internal package (repo, service, handler, interchange).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a car, truck or RV whose service and refuel history is tracked.
// Visits point at a vehicle through VehicleID; the vehicle never holds its visits.
type Vehicle struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ModelYear      int       `json:"model_year"`
	VIN            string    `json:"vin"`
	License        string    `json:"license"`
	CurrentMileage int       `json:"current_mileage"`
	Photo          []byte    `json:"-"` // nil when no photo was attached
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasPhoto reports whether the vehicle carries image data.
func (v Vehicle) HasPhoto() bool {
	return len(v.Photo) > 0
}

// VehicleKey is the identity used to match imported rows to stored vehicles.
type VehicleKey struct {
	Name      string
	ModelYear int
	VIN       string
	License   string
}

// Key returns the import matching key for v.
func (v Vehicle) Key() VehicleKey {
	return VehicleKey{Name: v.Name, ModelYear: v.ModelYear, VIN: v.VIN, License: v.License}
}
