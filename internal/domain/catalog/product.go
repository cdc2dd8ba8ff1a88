package catalog

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the lifecycle state of a product
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"     // Not yet visible in the catalog
	ProductStatusPublished ProductStatus = "published" // Live in the catalog
	ProductStatusArchived  ProductStatus = "archived"  // Retired, kept for history
)

// Product represents a sellable item in the catalog.
// It is the aggregate root for product-related operations.
type Product struct {
	shared.BaseAggregateRoot
	SKU            string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string               `gorm:"type:varchar(200);not null"`
	Description    string               `gorm:"type:text"`
	Price          decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	StockQuantity  int                  `gorm:"not null;default:0"`
	Status         ProductStatus        `gorm:"type:varchar(20);not null;default:'draft'"`
	ManufacturerID *uuid.UUID           `gorm:"type:uuid;index"`
	Tags           string               `gorm:"type:jsonb"` // JSON array of free-form tags
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product in draft state
func NewProduct(sku, name string, price valueobject.Money) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Name:              name,
		Price:             price.Amount(),
		Currency:          price.Currency(),
		Status:            ProductStatusDraft,
		Tags:              "[]",
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information.
// The SKU is immutable once assigned.
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetPrice changes the product price
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	oldPrice := p.Price
	p.Price = price.Amount()
	p.Currency = price.Currency()
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetManufacturer links the product to a manufacturer
func (p *Product) SetManufacturer(manufacturerID *uuid.UUID) {
	p.ManufacturerID = manufacturerID
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
}

// SetTags replaces the product tag list
func (p *Product) SetTags(tags string) error {
	if tags == "" {
		tags = "[]"
	}
	trimmed := strings.TrimSpace(tags)
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return shared.NewDomainError("INVALID_TAGS", "Tags must be a valid JSON array")
	}

	p.Tags = trimmed
	p.Touch()
	p.IncrementVersion()

	return nil
}

// SetTagList replaces the product tag list from a slice
func (p *Product) SetTagList(tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return shared.NewDomainError("INVALID_TAGS", "Tags must be serializable")
	}
	return p.SetTags(string(data))
}

// TagList returns the product tags as a slice
func (p *Product) TagList() []string {
	if p.Tags == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(p.Tags), &tags); err != nil {
		return []string{}
	}
	return tags
}

// AdjustStock applies a stock delta. Stock can never go negative.
func (p *Product) AdjustStock(delta int) error {
	newQty := p.StockQuantity + delta
	if newQty < 0 {
		return shared.ErrInsufficientStock
	}

	oldQty := p.StockQuantity
	p.StockQuantity = newQty
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStockAdjustedEvent(p, oldQty, delta))

	return nil
}

// Publish makes the product live in the catalog
func (p *Product) Publish() error {
	if p.Status == ProductStatusPublished {
		return shared.NewDomainError("ALREADY_PUBLISHED", "Product is already published")
	}
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("CANNOT_PUBLISH", "Cannot publish an archived product")
	}

	oldStatus := p.Status
	p.Status = ProductStatusPublished
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusPublished))

	return nil
}

// Archive retires the product. Archived products cannot be republished.
func (p *Product) Archive() error {
	if p.Status == ProductStatusArchived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Product is already archived")
	}

	oldStatus := p.Status
	p.Status = ProductStatusArchived
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusArchived))

	return nil
}

// CanDelete reports whether the product may be removed.
// Only archived products can be deleted.
func (p *Product) CanDelete() bool {
	return p.Status == ProductStatusArchived
}

// IsPublished returns true if the product is live
func (p *Product) IsPublished() bool {
	return p.Status == ProductStatusPublished
}

// IsArchived returns true if the product is archived
func (p *Product) IsArchived() bool {
	return p.Status == ProductStatusArchived
}

// PriceMoney returns the price as a Money value object
func (p *Product) PriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Price, p.Currency)
	return m
}

// StockValue returns price multiplied by on-hand quantity
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}

// validateSKU validates the stock keeping unit
func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateProductName validates the product name
func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
