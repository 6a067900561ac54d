package providerRepo

import (
	"context"

	"bookify/models"
)

// ProviderRepository defines data access for providers, their recurring
// availability windows and blocked-date overrides.
type ProviderRepository interface {
	// GetByID retrieves a provider by its unique ID.
	GetByID(ctx context.Context, providerID string) (*models.Provider, error)
	// Create persists a new provider record.
	Create(ctx context.Context, provider *models.Provider) error
	// UpdateWindows replaces a provider's weekly availability windows.
	UpdateWindows(ctx context.Context, providerID string, windows []models.AvailabilityWindow) error
	// ListActiveIDs returns ids of all active providers.
	ListActiveIDs(ctx context.Context) ([]string, error)

	// GetBlockedSlots retrieves blocked-date overrides for a provider on a given date.
	GetBlockedSlots(ctx context.Context, providerID, date string) ([]models.BlockedSlot, error)
	// CreateBlockedSlot persists a new blocked-date override.
	CreateBlockedSlot(ctx context.Context, blocked *models.BlockedSlot) error
	// RemoveBlockedSlot deletes a blocked-date override by id.
	RemoveBlockedSlot(ctx context.Context, blockID string) error

	// EnsureIndexes creates the collection indexes.
	EnsureIndexes() error
}
