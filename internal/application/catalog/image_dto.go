package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
)

// InitiateUploadRequest starts a presigned upload for a product image
type InitiateUploadRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	FileName    string    `json:"file_name" binding:"required,min=1,max=255"`
	FileSize    int64     `json:"file_size" binding:"required,gt=0"`
	ContentType string    `json:"content_type" binding:"required"`
}

// ConfirmUploadRequest confirms a previously initiated upload
type ConfirmUploadRequest struct {
	ImageID uuid.UUID `json:"image_id" binding:"required"`
}

// DirectUploadRequest carries file bytes received through the API itself.
// Used when clients cannot talk to object storage directly.
type DirectUploadRequest struct {
	ProductID   uuid.UUID
	FileName    string
	ContentType string
	Data        []byte
}

// ReorderImagesRequest sets the display order of a product's images.
// IDs are listed in the desired order.
type ReorderImagesRequest struct {
	ImageIDs []uuid.UUID `json:"image_ids" binding:"required,min=1,dive,required"`
}

// InitiateUploadResponse returns the presigned upload target
type InitiateUploadResponse struct {
	ImageID    uuid.UUID `json:"image_id"`
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ImageResponse represents a product image in API responses
type ImageResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	Status      string     `json:"status"`
	FileName    string     `json:"file_name"`
	FileSize    int64      `json:"file_size"`
	ContentType string     `json:"content_type"`
	StorageKey  string     `json:"storage_key"`
	Position    int        `json:"position"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	URL         string     `json:"url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToImageResponse converts a domain image to an ImageResponse
func ToImageResponse(img *catalog.ProductImage) ImageResponse {
	return ImageResponse{
		ID:          img.ID,
		ProductID:   img.ProductID,
		Status:      string(img.Status),
		FileName:    img.FileName,
		FileSize:    img.FileSize,
		ContentType: img.ContentType,
		StorageKey:  img.StorageKey,
		Position:    img.Position,
		UploadedBy:  img.UploadedBy,
		CreatedAt:   img.CreatedAt,
		UpdatedAt:   img.UpdatedAt,
	}
}

// ToImageResponses converts a slice of domain images
func ToImageResponses(images []catalog.ProductImage) []ImageResponse {
	responses := make([]ImageResponse, len(images))
	for i := range images {
		responses[i] = ToImageResponse(&images[i])
	}
	return responses
}
