// Package service contains the business logic for the vehicle logbook API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/vehicle-logbook/backend/internal/domain"
	"github.com/pkordes/vehicle-logbook/backend/internal/repo"
)

// Store hands out repositories and runs work in a transaction.
// *repo.Store satisfies it.
type Store interface {
	Repos() repo.Repos
	WithTx(ctx context.Context, fn func(repo.Repos) error) error
}

// validationError wraps domain.ErrValidation with a message for the client.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// requireName trims s and fails when nothing is left.
func requireName(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validationError("%s is required", field)
	}
	return s, nil
}

// itemName rejects names that would split the items column of an export.
func itemName(field, s string) error {
	if strings.Contains(s, domain.ItemListSeparator) {
		return validationError("%s must not contain %q", field, domain.ItemListSeparator)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if v < 0 {
		return validationError("%s must not be negative", field)
	}
	return nil
}
