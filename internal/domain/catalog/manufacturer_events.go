package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeManufacturer = "Manufacturer"

// Event type constants
const (
	EventTypeManufacturerCreated = "ManufacturerCreated"
	EventTypeManufacturerUpdated = "ManufacturerUpdated"
	EventTypeManufacturerDeleted = "ManufacturerDeleted"
)

// ManufacturerCreatedEvent is published when a new manufacturer is created
type ManufacturerCreatedEvent struct {
	shared.BaseDomainEvent
	ManufacturerID uuid.UUID `json:"manufacturer_id"`
	Name           string    `json:"name"`
	Country        string    `json:"country"`
}

// NewManufacturerCreatedEvent creates a new ManufacturerCreatedEvent
func NewManufacturerCreatedEvent(m *Manufacturer) *ManufacturerCreatedEvent {
	return &ManufacturerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturerCreated, AggregateTypeManufacturer, m.ID),
		ManufacturerID:  m.ID,
		Name:            m.Name,
		Country:         m.Country,
	}
}

// ManufacturerUpdatedEvent is published when manufacturer details change
type ManufacturerUpdatedEvent struct {
	shared.BaseDomainEvent
	ManufacturerID uuid.UUID `json:"manufacturer_id"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
}

// NewManufacturerUpdatedEvent creates a new ManufacturerUpdatedEvent
func NewManufacturerUpdatedEvent(m *Manufacturer) *ManufacturerUpdatedEvent {
	return &ManufacturerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturerUpdated, AggregateTypeManufacturer, m.ID),
		ManufacturerID:  m.ID,
		Name:            m.Name,
		Active:          m.Active,
	}
}

// ManufacturerDeletedEvent is published when a manufacturer is removed
type ManufacturerDeletedEvent struct {
	shared.BaseDomainEvent
	ManufacturerID uuid.UUID `json:"manufacturer_id"`
	Name           string    `json:"name"`
}

// NewManufacturerDeletedEvent creates a new ManufacturerDeletedEvent
func NewManufacturerDeletedEvent(m *Manufacturer) *ManufacturerDeletedEvent {
	return &ManufacturerDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturerDeleted, AggregateTypeManufacturer, m.ID),
		ManufacturerID:  m.ID,
		Name:            m.Name,
	}
}
