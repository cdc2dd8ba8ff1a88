package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ObjectStorageService is the storage abstraction the image workflow runs
// against. Implemented by the infrastructure layer (S3 or local filesystem).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading an object
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading an object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks whether an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)

	// Upload writes an object directly, bypassing the presigned flow
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
}

// ImageServiceConfig holds configuration for the image service
type ImageServiceConfig struct {
	UploadURLExpiry     time.Duration
	DownloadURLExpiry   time.Duration
	MaxImagesPerProduct int
	MaxFileSize         int64
	AllowedContentTypes []string
	StorageBackend      string
}

// DefaultImageServiceConfig returns the default configuration
func DefaultImageServiceConfig() ImageServiceConfig {
	return ImageServiceConfig{
		UploadURLExpiry:     15 * time.Minute,
		DownloadURLExpiry:   1 * time.Hour,
		MaxImagesPerProduct: 20,
		MaxFileSize:         catalog.MaxImageFileSize,
		AllowedContentTypes: []string{"image/jpeg", "image/png", "image/webp", "application/pdf"},
		StorageBackend:      "local",
	}
}

// ImageService handles the product media upload workflow
type ImageService struct {
	imageRepo   catalog.ProductImageRepository
	productRepo catalog.ProductRepository
	storage     ObjectStorageService
	config      ImageServiceConfig
	metrics     *telemetry.CatalogMetrics
	logger      *zap.Logger
}

// ImageServiceOption configures optional ImageService collaborators
type ImageServiceOption func(*ImageService)

// WithImageMetrics wires upload metrics into the service
func WithImageMetrics(metrics *telemetry.CatalogMetrics) ImageServiceOption {
	return func(s *ImageService) {
		s.metrics = metrics
	}
}

// NewImageService creates a new ImageService
func NewImageService(
	imageRepo catalog.ProductImageRepository,
	productRepo catalog.ProductRepository,
	storage ObjectStorageService,
	config ImageServiceConfig,
	logger *zap.Logger,
	opts ...ImageServiceOption,
) *ImageService {
	if config.UploadURLExpiry <= 0 {
		config.UploadURLExpiry = 15 * time.Minute
	}
	if config.DownloadURLExpiry <= 0 {
		config.DownloadURLExpiry = 1 * time.Hour
	}
	if config.MaxImagesPerProduct <= 0 {
		config.MaxImagesPerProduct = 20
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = catalog.MaxImageFileSize
	}

	s := &ImageService{
		imageRepo:   imageRepo,
		productRepo: productRepo,
		storage:     storage,
		config:      config,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitiateUpload creates a pending image record and returns a presigned upload URL.
// The object is not visible on the product until ConfirmUpload succeeds.
func (s *ImageService) InitiateUpload(ctx context.Context, req InitiateUploadRequest, uploadedBy *uuid.UUID) (*InitiateUploadResponse, error) {
	if err := s.checkProductAndQuota(ctx, req.ProductID); err != nil {
		return nil, err
	}
	if err := s.validateFile(req.FileSize, req.ContentType); err != nil {
		return nil, err
	}

	storageKey := s.generateStorageKey(req.ProductID, req.FileName)

	image, err := catalog.NewProductImage(req.ProductID, req.FileName, req.FileSize, req.ContentType, storageKey, uploadedBy)
	if err != nil {
		return nil, err
	}

	if err := s.imageRepo.Save(ctx, image); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		// Roll back the pending record so it does not linger without an object
		_ = s.imageRepo.Delete(ctx, image.ID)
		s.logger.Error("Failed to generate upload URL",
			zap.String("storage_key", storageKey), zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		ImageID:    image.ID,
		UploadURL:  uploadURL,
		StorageKey: storageKey,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload verifies the object landed in storage and activates the image
func (s *ImageService) ConfirmUpload(ctx context.Context, imageID uuid.UUID) (*ImageResponse, error) {
	image, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, image.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND",
			"Object not found in storage. Upload the file first.")
	}

	if err := image.Activate(); err != nil {
		return nil, err
	}

	if image.Position == 0 {
		count, err := s.imageRepo.CountByProduct(ctx, image.ProductID)
		if err != nil {
			return nil, err
		}
		if err := image.SetPosition(int(count)); err != nil {
			return nil, err
		}
	}

	if err := s.imageRepo.Save(ctx, image); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordUpload(ctx, s.config.StorageBackend)
	}

	response := ToImageResponse(image)
	s.enrichWithURL(ctx, &response)
	return &response, nil
}

// DirectUpload stores file bytes through the API and activates the image in
// one step. Meant for small files and local-backend deployments.
func (s *ImageService) DirectUpload(ctx context.Context, req DirectUploadRequest, uploadedBy *uuid.UUID) (*ImageResponse, error) {
	if err := s.checkProductAndQuota(ctx, req.ProductID); err != nil {
		return nil, err
	}
	if err := s.validateFile(int64(len(req.Data)), req.ContentType); err != nil {
		return nil, err
	}

	storageKey := s.generateStorageKey(req.ProductID, req.FileName)

	image, err := catalog.NewProductImage(req.ProductID, req.FileName, int64(len(req.Data)), req.ContentType, storageKey, uploadedBy)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Upload(ctx, storageKey, req.Data, req.ContentType); err != nil {
		s.logger.Error("Failed to store uploaded object",
			zap.String("storage_key", storageKey), zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store uploaded file")
	}

	if err := image.Activate(); err != nil {
		return nil, err
	}

	count, err := s.imageRepo.CountByProduct(ctx, req.ProductID)
	if err == nil {
		_ = image.SetPosition(int(count))
	}

	if err := s.imageRepo.Save(ctx, image); err != nil {
		// The object is orphaned if the record fails; remove it
		_ = s.storage.DeleteObject(ctx, storageKey)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordUpload(ctx, s.config.StorageBackend)
	}

	response := ToImageResponse(image)
	s.enrichWithURL(ctx, &response)
	return &response, nil
}

// GetByID retrieves an image by ID
func (s *ImageService) GetByID(ctx context.Context, imageID uuid.UUID) (*ImageResponse, error) {
	image, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		return nil, err
	}

	response := ToImageResponse(image)
	s.enrichWithURL(ctx, &response)
	return &response, nil
}

// ListByProduct retrieves all non-deleted images of a product with download URLs
func (s *ImageService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]ImageResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return nil, err
	}

	images, err := s.imageRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	responses := ToImageResponses(images)
	for i := range responses {
		s.enrichWithURL(ctx, &responses[i])
	}
	return responses, nil
}

// Reorder applies the given positions to a product's images. Every active
// image of the product must appear exactly once.
func (s *ImageService) Reorder(ctx context.Context, productID uuid.UUID, req ReorderImagesRequest) ([]ImageResponse, error) {
	images, err := s.imageRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*catalog.ProductImage, len(images))
	for i := range images {
		byID[images[i].ID] = &images[i]
	}

	if len(req.ImageIDs) != len(images) {
		return nil, shared.NewDomainError("INVALID_REORDER",
			fmt.Sprintf("Expected %d image IDs, got %d", len(images), len(req.ImageIDs)))
	}

	seen := make(map[uuid.UUID]bool, len(req.ImageIDs))
	for position, id := range req.ImageIDs {
		image, ok := byID[id]
		if !ok {
			return nil, shared.NewDomainError("INVALID_REORDER", "Image does not belong to this product")
		}
		if seen[id] {
			return nil, shared.NewDomainError("INVALID_REORDER", "Duplicate image ID in reorder request")
		}
		seen[id] = true

		if err := image.SetPosition(position); err != nil {
			return nil, err
		}
	}

	for i := range images {
		if err := s.imageRepo.Save(ctx, &images[i]); err != nil {
			return nil, err
		}
	}

	ordered, err := s.imageRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	responses := ToImageResponses(ordered)
	for i := range responses {
		s.enrichWithURL(ctx, &responses[i])
	}
	return responses, nil
}

// Delete soft-deletes the image record and removes the stored object.
// A storage failure is logged but does not fail the request.
func (s *ImageService) Delete(ctx context.Context, imageID uuid.UUID) error {
	image, err := s.imageRepo.FindByID(ctx, imageID)
	if err != nil {
		return err
	}

	if err := image.MarkDeleted(); err != nil {
		return err
	}
	if err := s.imageRepo.Save(ctx, image); err != nil {
		return err
	}

	if err := s.storage.DeleteObject(ctx, image.StorageKey); err != nil {
		s.logger.Warn("Failed to delete object from storage",
			zap.String("image_id", image.ID.String()),
			zap.String("storage_key", image.StorageKey),
			zap.Error(err))
	}

	return nil
}

func (s *ImageService) checkProductAndQuota(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		return err
	}

	count, err := s.imageRepo.CountByProduct(ctx, productID)
	if err != nil {
		return err
	}
	if count >= int64(s.config.MaxImagesPerProduct) {
		return shared.NewDomainError("IMAGE_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d images per product allowed", s.config.MaxImagesPerProduct))
	}
	return nil
}

func (s *ImageService) validateFile(size int64, contentType string) error {
	if size > s.config.MaxFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("File size exceeds the maximum of %d bytes", s.config.MaxFileSize))
	}
	allowed := false
	for _, t := range s.config.AllowedContentTypes {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		return shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type %q is not allowed", contentType))
	}
	return nil
}

func (s *ImageService) generateStorageKey(productID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("products/%s/images/%s%s", productID.String(), uuid.New().String(), ext)
}

func (s *ImageService) enrichWithURL(ctx context.Context, response *ImageResponse) {
	if response.Status != string(catalog.ImageStatusActive) {
		return
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, response.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		s.logger.Warn("Failed to generate download URL",
			zap.String("storage_key", response.StorageKey), zap.Error(err))
		return
	}
	response.URL = url
}
