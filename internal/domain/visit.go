package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reasons a service visit cannot be exported.
var (
	ErrVisitNoVehicle  = errors.New("visit has no vehicle")
	ErrVisitNoProvider = errors.New("visit has no provider")
	ErrVisitNoItems    = errors.New("visit has no line items")
	ErrVisitItemName   = errors.New(`line item name contains ";"`)
)

// ServiceVisit is a dated, priced maintenance event for one vehicle.
// VehicleID and ProviderID are nil once the referenced row has been deleted.
type ServiceVisit struct {
	ID         uuid.UUID          `json:"id"`
	Date       time.Time          `json:"date"`
	Mileage    int                `json:"mileage"`
	Cost       float64            `json:"cost"` // subtotal of line items
	Tax        *float64           `json:"tax,omitempty"`
	Discount   *float64           `json:"discount,omitempty"`
	Total      float64            `json:"total"`
	Notes      string             `json:"notes,omitempty"`
	Photo      []byte             `json:"-"`
	VehicleID  *uuid.UUID         `json:"vehicle_id,omitempty"`
	ProviderID *uuid.UUID         `json:"provider_id,omitempty"`
	Items      []SavedServiceItem `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Recalculate sets Total from Cost, Tax and Discount.
// Total is not kept in sync automatically; call this after changing any input.
func (v *ServiceVisit) Recalculate() {
	v.Total = v.Cost + deref(v.Tax) - deref(v.Discount)
}

// ItemsSubtotal returns the sum of the line item costs.
func (v ServiceVisit) ItemsSubtotal() float64 {
	var sum float64
	for _, it := range v.Items {
		sum += it.Cost
	}
	return sum
}

// Validate reports why the visit is not exportable, or nil when it is.
func (v ServiceVisit) Validate() error {
	switch {
	case v.VehicleID == nil:
		return ErrVisitNoVehicle
	case v.ProviderID == nil:
		return ErrVisitNoProvider
	case len(v.Items) == 0:
		return ErrVisitNoItems
	}
	for _, it := range v.Items {
		if strings.Contains(it.Name, ItemListSeparator) {
			return ErrVisitItemName
		}
	}
	return nil
}

// RefuelStation is a fuel station where refuel visits happen.
type RefuelStation struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// RefuelVisit records one fill-up.
type RefuelVisit struct {
	ID            uuid.UUID  `json:"id"`
	Odometer      int        `json:"odometer"`
	Date          time.Time  `json:"date"`
	Gallons       float64    `json:"gallons"`
	CostPerGallon float64    `json:"cost_per_gallon"`
	CarWashCost   *float64   `json:"car_wash_cost,omitempty"`
	Total         float64    `json:"total"`
	VehicleID     *uuid.UUID `json:"vehicle_id,omitempty"`
	StationID     *uuid.UUID `json:"station_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Recalculate sets Total from Gallons, CostPerGallon and the optional car wash.
func (r *RefuelVisit) Recalculate() {
	r.Total = r.Gallons*r.CostPerGallon + deref(r.CarWashCost)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
