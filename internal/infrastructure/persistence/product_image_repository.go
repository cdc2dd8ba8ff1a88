package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductImageRepository implements catalog.ProductImageRepository using GORM
type GormProductImageRepository struct {
	db *gorm.DB
}

// NewGormProductImageRepository creates a new GormProductImageRepository
func NewGormProductImageRepository(db *gorm.DB) *GormProductImageRepository {
	return &GormProductImageRepository{db: db}
}

// FindByID finds an image by its ID
func (r *GormProductImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductImage, error) {
	var image catalog.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &image, nil
}

// FindByProduct finds all non-deleted images of a product, ordered by position
func (r *GormProductImageRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.ProductImage, error) {
	var images []catalog.ProductImage
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND status <> ?", productID, catalog.ImageStatusDeleted).
		Order("position ASC, created_at ASC").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// FindByStorageKey finds an image by its object storage key
func (r *GormProductImageRepository) FindByStorageKey(ctx context.Context, storageKey string) (*catalog.ProductImage, error) {
	var image catalog.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "storage_key = ?", storageKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &image, nil
}

// Save creates or updates an image record
func (r *GormProductImageRepository) Save(ctx context.Context, image *catalog.ProductImage) error {
	return r.db.WithContext(ctx).Save(image).Error
}

// Delete removes an image record
func (r *GormProductImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.ProductImage{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountByProduct counts non-deleted images of a product
func (r *GormProductImageRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.ProductImage{}).
		Where("product_id = ? AND status <> ?", productID, catalog.ImageStatusDeleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormProductImageRepository implements ProductImageRepository
var _ catalog.ProductImageRepository = (*GormProductImageRepository)(nil)
