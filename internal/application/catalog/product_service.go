package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// EventPublisher publishes domain events after state changes are persisted
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent) error
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo      catalog.ProductRepository
	manufacturerRepo catalog.ManufacturerRepository
	cache            catalog.ProductCache
	eventBus         EventPublisher
	metrics          *telemetry.CatalogMetrics
	logger           *zap.Logger
}

// ProductServiceOption is a functional option for configuring ProductService
type ProductServiceOption func(*ProductService)

// WithProductCache attaches a read cache to the service
func WithProductCache(cache catalog.ProductCache) ProductServiceOption {
	return func(s *ProductService) {
		s.cache = cache
	}
}

// WithProductMetrics attaches business metrics to the service
func WithProductMetrics(metrics *telemetry.CatalogMetrics) ProductServiceOption {
	return func(s *ProductService) {
		s.metrics = metrics
	}
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	manufacturerRepo catalog.ManufacturerRepository,
	eventBus EventPublisher,
	logger *zap.Logger,
	opts ...ProductServiceOption,
) *ProductService {
	s := &ProductService{
		productRepo:      productRepo,
		manufacturerRepo: manufacturerRepo,
		eventBus:         eventBus,
		logger:           logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new product in draft status
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists.WithMessage("Product with this SKU already exists")
	}

	currency := valueobject.DefaultCurrency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}
	price, err := valueobject.NewMoney(req.Price, currency)
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, price)
	if err != nil {
		return nil, err
	}

	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}

	if req.StockQuantity != nil && *req.StockQuantity > 0 {
		if err := product.AdjustStock(*req.StockQuantity); err != nil {
			return nil, err
		}
	}

	if req.ManufacturerID != nil {
		if err := s.checkManufacturer(ctx, *req.ManufacturerID); err != nil {
			return nil, err
		}
		product.SetManufacturer(req.ManufacturerID)
	}

	if len(req.Tags) > 0 {
		if err := product.SetTagList(req.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	if s.metrics != nil {
		s.metrics.RecordProductCreated(ctx)
	}
	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU))

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID, consulting the read cache first
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, productID)
		if err != nil {
			s.logger.Warn("Product cache lookup failed", zap.Error(err))
		} else if cached != nil {
			response := ToProductResponse(cached)
			return &response, nil
		}
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, product, 0); err != nil {
			s.logger.Warn("Product cache store failed", zap.Error(err))
		}
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetBySKU retrieves a product by SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductListResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.ManufacturerID != nil {
		domainFilter.Filters["manufacturer_id"] = *filter.ManufacturerID
	}
	if filter.MinPrice != nil {
		domainFilter.Filters["min_price"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		domainFilter.Filters["max_price"] = *filter.MaxPrice
	}
	if filter.InStock != nil {
		domainFilter.Filters["in_stock"] = *filter.InStock
	}
	if filter.Tag != "" {
		domainFilter.Filters["tag"] = filter.Tag
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToProductListResponses(products), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a product's basic information
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := product.Description
	if req.Description != nil {
		description = *req.Description
	}
	if err := product.Update(name, description); err != nil {
		return nil, err
	}

	if req.Tags != nil {
		if err := product.SetTagList(req.Tags); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// SetPrice changes a product's price
func (s *ProductService) SetPrice(ctx context.Context, productID uuid.UUID, req SetPriceRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	currency := product.Currency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}
	price, err := valueobject.NewMoney(req.Price, currency)
	if err != nil {
		return nil, err
	}

	if err := product.SetPrice(price); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// AdjustStock applies a relative stock delta
func (s *ProductService) AdjustStock(ctx context.Context, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.AdjustStock(req.Delta); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, product)
	if s.metrics != nil {
		s.metrics.RecordStockAdjusted(ctx, product.ID.String(), int64(req.Delta))
	}

	response := ToProductResponse(product)
	return &response, nil
}

// SetManufacturer assigns or clears the product's manufacturer
func (s *ProductService) SetManufacturer(ctx context.Context, productID uuid.UUID, req SetManufacturerRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.ManufacturerID != nil {
		if err := s.checkManufacturer(ctx, *req.ManufacturerID); err != nil {
			return nil, err
		}
	}
	product.SetManufacturer(req.ManufacturerID)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Publish moves a product from draft to published
func (s *ProductService) Publish(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, productID, (*catalog.Product).Publish)
}

// Archive retires a product from the catalog
func (s *ProductService) Archive(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, productID, (*catalog.Product).Archive)
}

func (s *ProductService) changeStatus(ctx context.Context, productID uuid.UUID, transition func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := transition(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, product)
	if s.metrics != nil {
		s.metrics.RecordProductStatusChanged(ctx, string(product.Status))
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product. Published products cannot be deleted.
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return err
	}

	if !product.CanDelete() {
		return shared.NewDomainError("PRODUCT_PUBLISHED", "Published products must be archived before deletion")
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, productID); err != nil {
			s.logger.Warn("Product cache invalidation failed", zap.Error(err))
		}
	}

	deleted := catalog.NewProductDeletedEvent(product)
	if err := s.eventBus.Publish(ctx, deleted); err != nil {
		s.logger.Warn("Failed to publish product deleted event", zap.Error(err))
	}

	s.logger.Info("Product deleted",
		zap.String("product_id", productID.String()),
		zap.String("sku", product.SKU))

	return nil
}

// checkManufacturer verifies the manufacturer exists and is active
func (s *ProductService) checkManufacturer(ctx context.Context, manufacturerID uuid.UUID) error {
	manufacturer, err := s.manufacturerRepo.FindByID(ctx, manufacturerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_MANUFACTURER", "Manufacturer not found")
		}
		return err
	}
	if !manufacturer.Active {
		return shared.NewDomainError("MANUFACTURER_INACTIVE", "Manufacturer is not active")
	}
	return nil
}

// afterWrite refreshes the cache entry and publishes pending events
func (s *ProductService) afterWrite(ctx context.Context, product *catalog.Product) {
	if s.cache != nil {
		if err := s.cache.Set(ctx, product, 0); err != nil {
			s.logger.Warn("Product cache refresh failed", zap.Error(err))
		}
	}
	s.publishEvents(ctx, product)
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
	product.ClearDomainEvents()
}
