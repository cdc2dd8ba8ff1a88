package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxImageFileSize is the maximum allowed file size (20MB)
const MaxImageFileSize = 20 * 1024 * 1024

// ImageStatus represents the status of a product image
type ImageStatus string

const (
	ImageStatusPending ImageStatus = "pending" // Metadata saved, object upload not confirmed
	ImageStatusActive  ImageStatus = "active"  // Object confirmed in storage
	ImageStatusDeleted ImageStatus = "deleted" // Soft-deleted, object removal may lag
)

// IsValid checks if the image status is valid
func (s ImageStatus) IsValid() bool {
	switch s {
	case ImageStatusPending, ImageStatusActive, ImageStatusDeleted:
		return true
	default:
		return false
	}
}

// ProductImage represents an uploaded media object attached to a product.
// The binary lives in object storage; this entity holds the metadata.
type ProductImage struct {
	shared.BaseAggregateRoot
	ProductID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status      ImageStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	FileName    string      `gorm:"type:varchar(255);not null"`
	FileSize    int64       `gorm:"not null"`
	ContentType string      `gorm:"type:varchar(100);not null"`
	StorageKey  string      `gorm:"type:varchar(500);not null;uniqueIndex"`
	Position    int         `gorm:"not null;default:0"` // Display order, 0-based
	UploadedBy  *uuid.UUID  `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ProductImage) TableName() string {
	return "product_images"
}

// NewProductImage creates a new image record in pending status
func NewProductImage(productID uuid.UUID, fileName string, fileSize int64, contentType, storageKey string, uploadedBy *uuid.UUID) (*ProductImage, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID cannot be empty")
	}
	if err := validateImageFileName(fileName); err != nil {
		return nil, err
	}
	if err := validateImageFileSize(fileSize); err != nil {
		return nil, err
	}
	if err := validateImageContentType(contentType); err != nil {
		return nil, err
	}
	if strings.TrimSpace(storageKey) == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}

	img := &ProductImage{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		Status:            ImageStatusPending,
		FileName:          fileName,
		FileSize:          fileSize,
		ContentType:       contentType,
		StorageKey:        storageKey,
		UploadedBy:        uploadedBy,
	}

	return img, nil
}

// Activate marks the image as confirmed in object storage
func (i *ProductImage) Activate() error {
	if i.Status == ImageStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot activate a deleted image")
	}
	if i.Status == ImageStatusActive {
		return nil
	}

	i.Status = ImageStatusActive
	i.Touch()
	i.IncrementVersion()

	return nil
}

// MarkDeleted soft-deletes the image
func (i *ProductImage) MarkDeleted() error {
	if i.Status == ImageStatusDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Image is already deleted")
	}

	i.Status = ImageStatusDeleted
	i.Touch()
	i.IncrementVersion()

	return nil
}

// SetPosition sets the display order of the image
func (i *ProductImage) SetPosition(position int) error {
	if position < 0 {
		return shared.NewDomainError("INVALID_POSITION", "Position cannot be negative")
	}

	i.Position = position
	i.Touch()
	i.IncrementVersion()

	return nil
}

// IsActive returns true if the image is confirmed in storage
func (i *ProductImage) IsActive() bool {
	return i.Status == ImageStatusActive
}

func validateImageFileName(fileName string) error {
	if strings.TrimSpace(fileName) == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(fileName) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	// Path separators would let a crafted name escape the storage prefix
	if strings.ContainsAny(fileName, "/\\") {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot contain path separators")
	}
	return nil
}

func validateImageFileSize(fileSize int64) error {
	if fileSize <= 0 {
		return shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive")
	}
	if fileSize > MaxImageFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "File size exceeds the maximum allowed")
	}
	return nil
}

func validateImageContentType(contentType string) error {
	if strings.TrimSpace(contentType) == "" {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type cannot be empty")
	}
	if !strings.Contains(contentType, "/") {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type must be a valid MIME type")
	}
	return nil
}
