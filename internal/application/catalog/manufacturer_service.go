package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ManufacturerService handles manufacturer-related business operations
type ManufacturerService struct {
	manufacturerRepo catalog.ManufacturerRepository
	productRepo      catalog.ProductRepository
	eventBus         EventPublisher
	logger           *zap.Logger
}

// NewManufacturerService creates a new ManufacturerService
func NewManufacturerService(
	manufacturerRepo catalog.ManufacturerRepository,
	productRepo catalog.ProductRepository,
	eventBus EventPublisher,
	logger *zap.Logger,
) *ManufacturerService {
	return &ManufacturerService{
		manufacturerRepo: manufacturerRepo,
		productRepo:      productRepo,
		eventBus:         eventBus,
		logger:           logger,
	}
}

// Create creates a new manufacturer
func (s *ManufacturerService) Create(ctx context.Context, req CreateManufacturerRequest) (*ManufacturerResponse, error) {
	existing, err := s.manufacturerRepo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists.WithMessage("Manufacturer with this name already exists")
	}

	manufacturer, err := catalog.NewManufacturer(req.Name, req.Country)
	if err != nil {
		return nil, err
	}

	if req.Website != "" {
		if err := manufacturer.Update(req.Name, req.Country, req.Website); err != nil {
			return nil, err
		}
	}
	if req.ContactEmail != "" {
		if err := manufacturer.SetContactEmail(req.ContactEmail); err != nil {
			return nil, err
		}
	}

	if err := s.manufacturerRepo.Save(ctx, manufacturer); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, manufacturer)
	s.logger.Info("Manufacturer created",
		zap.String("manufacturer_id", manufacturer.ID.String()),
		zap.String("name", manufacturer.Name))

	response := ToManufacturerResponse(manufacturer)
	return &response, nil
}

// GetByID retrieves a manufacturer by ID, including its product count
func (s *ManufacturerService) GetByID(ctx context.Context, manufacturerID uuid.UUID) (*ManufacturerResponse, error) {
	manufacturer, err := s.manufacturerRepo.FindByID(ctx, manufacturerID)
	if err != nil {
		return nil, err
	}

	response := ToManufacturerResponse(manufacturer)

	count, err := s.productRepo.CountByManufacturer(ctx, manufacturerID)
	if err != nil {
		s.logger.Warn("Failed to count manufacturer products", zap.Error(err))
	} else {
		response.ProductCount = count
	}

	return &response, nil
}

// List retrieves manufacturers with filtering and pagination
func (s *ManufacturerService) List(ctx context.Context, filter ManufacturerListFilter) (*shared.Paginated[ManufacturerResponse], error) {
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
	if filter.Country != "" {
		domainFilter.Filters["country"] = filter.Country
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	manufacturers, err := s.manufacturerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.manufacturerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToManufacturerResponses(manufacturers), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update updates a manufacturer's details
func (s *ManufacturerService) Update(ctx context.Context, manufacturerID uuid.UUID, req UpdateManufacturerRequest) (*ManufacturerResponse, error) {
	manufacturer, err := s.manufacturerRepo.FindByID(ctx, manufacturerID)
	if err != nil {
		return nil, err
	}

	name := manufacturer.Name
	if req.Name != nil {
		name = *req.Name
	}
	if name != manufacturer.Name {
		existing, err := s.manufacturerRepo.FindByName(ctx, name)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != manufacturerID {
			return nil, shared.ErrAlreadyExists.WithMessage("Manufacturer with this name already exists")
		}
	}

	country := manufacturer.Country
	if req.Country != nil {
		country = *req.Country
	}
	website := manufacturer.Website
	if req.Website != nil {
		website = *req.Website
	}

	if err := manufacturer.Update(name, country, website); err != nil {
		return nil, err
	}
	if req.ContactEmail != nil {
		if err := manufacturer.SetContactEmail(*req.ContactEmail); err != nil {
			return nil, err
		}
	}

	if err := s.manufacturerRepo.Save(ctx, manufacturer); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, manufacturer)

	response := ToManufacturerResponse(manufacturer)
	return &response, nil
}

// Activate re-enables a manufacturer
func (s *ManufacturerService) Activate(ctx context.Context, manufacturerID uuid.UUID) (*ManufacturerResponse, error) {
	return s.changeState(ctx, manufacturerID, (*catalog.Manufacturer).Activate)
}

// Deactivate disables a manufacturer without deleting it
func (s *ManufacturerService) Deactivate(ctx context.Context, manufacturerID uuid.UUID) (*ManufacturerResponse, error) {
	return s.changeState(ctx, manufacturerID, (*catalog.Manufacturer).Deactivate)
}

func (s *ManufacturerService) changeState(ctx context.Context, manufacturerID uuid.UUID, transition func(*catalog.Manufacturer) error) (*ManufacturerResponse, error) {
	manufacturer, err := s.manufacturerRepo.FindByID(ctx, manufacturerID)
	if err != nil {
		return nil, err
	}

	if err := transition(manufacturer); err != nil {
		return nil, err
	}

	if err := s.manufacturerRepo.Save(ctx, manufacturer); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, manufacturer)

	response := ToManufacturerResponse(manufacturer)
	return &response, nil
}

// Delete removes a manufacturer. Deletion is blocked while products still
// reference it.
func (s *ManufacturerService) Delete(ctx context.Context, manufacturerID uuid.UUID) error {
	if _, err := s.manufacturerRepo.FindByID(ctx, manufacturerID); err != nil {
		return err
	}

	count, err := s.productRepo.CountByManufacturer(ctx, manufacturerID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("MANUFACTURER_IN_USE", "Manufacturer still has products assigned")
	}

	if err := s.manufacturerRepo.Delete(ctx, manufacturerID); err != nil {
		return err
	}

	s.logger.Info("Manufacturer deleted", zap.String("manufacturer_id", manufacturerID.String()))
	return nil
}

func (s *ManufacturerService) publishEvents(ctx context.Context, manufacturer *catalog.Manufacturer) {
	events := manufacturer.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish manufacturer events", zap.Error(err))
	}
	manufacturer.ClearDomainEvents()
}
