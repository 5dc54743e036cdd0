package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ServiceItem is a catalog entry: a named service with a default price.
// It is not tied to any visit.
type ServiceItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Cost      float64   `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemListSeparator joins line item names and costs in a single export column,
// so it may not appear inside a line item name.
const ItemListSeparator = ";"

// CatalogKey normalizes a catalog item name for matching.
func CatalogKey(name string) string {
	return strings.TrimSpace(name)
}

// SavedServiceItem is a line item on a service visit. It is a copy of the
// catalog item's name and price taken when the visit was saved; later edits
// to the catalog never reach it.
type SavedServiceItem struct {
	ID       uuid.UUID  `json:"id"`
	VisitID  *uuid.UUID `json:"visit_id,omitempty"`
	Name     string     `json:"name"`
	Cost     float64    `json:"cost"`
	Position int        `json:"position"`
}

// SnapshotItem copies a catalog item into a new, unattached line item.
func SnapshotItem(item ServiceItem) SavedServiceItem {
	return SavedServiceItem{
		ID:   uuid.New(),
		Name: item.Name,
		Cost: item.Cost,
	}
}
