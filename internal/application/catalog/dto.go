package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	SKU            string          `json:"sku" binding:"required,min=3,max=50"`
	Name           string          `json:"name" binding:"required,min=1,max=200"`
	Description    string          `json:"description" binding:"max=2000"`
	Price          decimal.Decimal `json:"price" binding:"required"`
	Currency       string          `json:"currency" binding:"omitempty,len=3"`
	StockQuantity  *int            `json:"stock_quantity" binding:"omitempty,gte=0"`
	ManufacturerID *uuid.UUID      `json:"manufacturer_id"`
	Tags           []string        `json:"tags" binding:"max=20,dive,min=1,max=50"`
}

// UpdateProductRequest represents a request to update a product.
// The SKU is immutable and cannot appear here.
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	Tags        []string `json:"tags" binding:"omitempty,max=20,dive,min=1,max=50"`
}

// SetPriceRequest represents a request to change a product's price
type SetPriceRequest struct {
	Price    decimal.Decimal `json:"price" binding:"required"`
	Currency string          `json:"currency" binding:"omitempty,len=3"`
}

// AdjustStockRequest represents a relative stock adjustment
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// SetManufacturerRequest assigns or clears a product's manufacturer
type SetManufacturerRequest struct {
	ManufacturerID *uuid.UUID `json:"manufacturer_id"`
}

// ProductListFilter contains filtering options for product listing
type ProductListFilter struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
	Search         string
	Status         string
	ManufacturerID *uuid.UUID
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	InStock        *bool
	Tag            string
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	StockQuantity  int             `json:"stock_quantity"`
	Status         string          `json:"status"`
	ManufacturerID *uuid.UUID      `json:"manufacturer_id"`
	Tags           []string        `json:"tags"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// ProductListResponse represents a list item for products
type ProductListResponse struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	StockQuantity  int             `json:"stock_quantity"`
	Status         string          `json:"status"`
	ManufacturerID *uuid.UUID      `json:"manufacturer_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CreateManufacturerRequest represents a request to create a manufacturer
type CreateManufacturerRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Country      string `json:"country" binding:"max=100"`
	Website      string `json:"website" binding:"omitempty,url,max=500"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email,max=200"`
}

// UpdateManufacturerRequest represents a request to update a manufacturer
type UpdateManufacturerRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Country      *string `json:"country" binding:"omitempty,max=100"`
	Website      *string `json:"website" binding:"omitempty,url,max=500"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email,max=200"`
}

// ManufacturerListFilter contains filtering options for manufacturer listing
type ManufacturerListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Country  string
	Active   *bool
}

// ManufacturerResponse represents a manufacturer in API responses
type ManufacturerResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	Website      string    `json:"website"`
	ContactEmail string    `json:"contact_email"`
	Active       bool      `json:"active"`
	ProductCount int64     `json:"product_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Currency:       string(p.Currency),
		StockQuantity:  p.StockQuantity,
		Status:         string(p.Status),
		ManufacturerID: p.ManufacturerID,
		Tags:           p.TagList(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

// ToProductListResponses converts domain products to list response DTOs
func ToProductListResponses(products []catalog.Product) []ProductListResponse {
	responses := make([]ProductListResponse, len(products))
	for i, p := range products {
		responses[i] = ProductListResponse{
			ID:             p.ID,
			SKU:            p.SKU,
			Name:           p.Name,
			Price:          p.Price,
			Currency:       string(p.Currency),
			StockQuantity:  p.StockQuantity,
			Status:         string(p.Status),
			ManufacturerID: p.ManufacturerID,
			CreatedAt:      p.CreatedAt,
		}
	}
	return responses
}

// ToManufacturerResponse converts a domain manufacturer to a response DTO
func ToManufacturerResponse(m *catalog.Manufacturer) ManufacturerResponse {
	return ManufacturerResponse{
		ID:           m.ID,
		Name:         m.Name,
		Country:      m.Country,
		Website:      m.Website,
		ContactEmail: m.ContactEmail,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		Version:      m.Version,
	}
}

// ToManufacturerResponses converts domain manufacturers to response DTOs
func ToManufacturerResponses(manufacturers []catalog.Manufacturer) []ManufacturerResponse {
	responses := make([]ManufacturerResponse, len(manufacturers))
	for i := range manufacturers {
		responses[i] = ToManufacturerResponse(&manufacturers[i])
	}
	return responses
}
