package domain

import (
	"time"

	"github.com/google/uuid"
)

// ServiceProvider is a shop or mechanic that performs service visits.
type ServiceProvider struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContactInfo string    `json:"contact_info"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProviderKey is the identity used to match imported rows to stored providers.
type ProviderKey struct {
	Name        string
	ContactInfo string
}

// Key returns the import matching key for p.
func (p ServiceProvider) Key() ProviderKey {
	return ProviderKey{Name: p.Name, ContactInfo: p.ContactInfo}
}
