package catalog

import (
	"net/mail"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Manufacturer represents a company whose products appear in the catalog.
// It is the aggregate root for manufacturer-related operations.
type Manufacturer struct {
	shared.BaseAggregateRoot
	Name         string `gorm:"type:varchar(200);not null;uniqueIndex"`
	Country      string `gorm:"type:varchar(100)"`
	Website      string `gorm:"type:varchar(500)"`
	ContactEmail string `gorm:"type:varchar(200);index"`
	Active       bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Manufacturer) TableName() string {
	return "manufacturers"
}

// NewManufacturer creates a new active manufacturer
func NewManufacturer(name, country string) (*Manufacturer, error) {
	if err := validateManufacturerName(name); err != nil {
		return nil, err
	}

	m := &Manufacturer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Country:           strings.TrimSpace(country),
		Active:            true,
	}

	m.AddDomainEvent(NewManufacturerCreatedEvent(m))

	return m, nil
}

// Update updates manufacturer details
func (m *Manufacturer) Update(name, country, website string) error {
	if err := validateManufacturerName(name); err != nil {
		return err
	}

	m.Name = strings.TrimSpace(name)
	m.Country = strings.TrimSpace(country)
	m.Website = strings.TrimSpace(website)
	m.Touch()
	m.IncrementVersion()

	m.AddDomainEvent(NewManufacturerUpdatedEvent(m))

	return nil
}

// SetContactEmail sets the manufacturer's contact address
func (m *Manufacturer) SetContactEmail(email string) error {
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid contact email address")
		}
	}

	m.ContactEmail = strings.ToLower(strings.TrimSpace(email))
	m.Touch()
	m.IncrementVersion()

	return nil
}

// Deactivate takes the manufacturer out of use for new products
func (m *Manufacturer) Deactivate() error {
	if !m.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Manufacturer is already inactive")
	}

	m.Active = false
	m.Touch()
	m.IncrementVersion()

	m.AddDomainEvent(NewManufacturerUpdatedEvent(m))

	return nil
}

// Activate puts the manufacturer back in use
func (m *Manufacturer) Activate() error {
	if m.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Manufacturer is already active")
	}

	m.Active = true
	m.Touch()
	m.IncrementVersion()

	m.AddDomainEvent(NewManufacturerUpdatedEvent(m))

	return nil
}

// validateManufacturerName validates the manufacturer name
func validateManufacturerName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return shared.NewDomainError("INVALID_NAME", "Manufacturer name cannot be empty")
	}
	if len(trimmed) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Manufacturer name cannot exceed 200 characters")
	}
	return nil
}
