package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// ManufacturerRepository defines the interface for manufacturer persistence
type ManufacturerRepository interface {
	// FindByID finds a manufacturer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Manufacturer, error)

	// FindByName finds a manufacturer by its exact name
	FindByName(ctx context.Context, name string) (*Manufacturer, error)

	// FindAll finds all manufacturers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Manufacturer, error)

	// Save creates or updates a manufacturer
	Save(ctx context.Context, manufacturer *Manufacturer) error

	// Delete deletes a manufacturer
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts manufacturers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
