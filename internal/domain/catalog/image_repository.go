package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductImageRepository defines the interface for product image persistence
type ProductImageRepository interface {
	// FindByID finds an image by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductImage, error)

	// FindByProduct finds all non-deleted images of a product, ordered by position
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductImage, error)

	// FindByStorageKey finds an image by its object storage key
	FindByStorageKey(ctx context.Context, storageKey string) (*ProductImage, error)

	// Save creates or updates an image record
	Save(ctx context.Context, image *ProductImage) error

	// Delete removes an image record
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByProduct counts non-deleted images of a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
