package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// EventSerializer handles JSON serialization of domain events. Deserialization
// needs a registered Go type per event type.
type EventSerializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type
}

// NewEventSerializer creates a serializer with every known domain event
// pre-registered.
func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{
		registry: make(map[string]reflect.Type),
	}
	s.registerKnownEvents()
	return s
}

func (s *EventSerializer) registerKnownEvents() {
	s.Register(catalog.EventTypeProductCreated, &catalog.ProductCreatedEvent{})
	s.Register(catalog.EventTypeProductUpdated, &catalog.ProductUpdatedEvent{})
	s.Register(catalog.EventTypeProductStatusChanged, &catalog.ProductStatusChangedEvent{})
	s.Register(catalog.EventTypeProductPriceChanged, &catalog.ProductPriceChangedEvent{})
	s.Register(catalog.EventTypeProductStockAdjusted, &catalog.ProductStockAdjustedEvent{})
	s.Register(catalog.EventTypeProductDeleted, &catalog.ProductDeletedEvent{})
	s.Register(catalog.EventTypeManufacturerCreated, &catalog.ManufacturerCreatedEvent{})
	s.Register(catalog.EventTypeManufacturerUpdated, &catalog.ManufacturerUpdatedEvent{})
	s.Register(catalog.EventTypeManufacturerDeleted, &catalog.ManufacturerDeletedEvent{})
	s.Register(identity.EventTypeUserCreated, &identity.UserCreatedEvent{})
	s.Register(identity.EventTypeUserPasswordChanged, &identity.UserPasswordChangedEvent{})
	s.Register(identity.EventTypeUserStatusChanged, &identity.UserStatusChangedEvent{})
}

// Register registers an event type for deserialization.
// The eventType must match what EventType() returns on the event.
func (s *EventSerializer) Register(eventType string, eventInstance shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(eventInstance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.registry[eventType] = t
}

// Serialize serializes a domain event to JSON bytes
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize deserializes JSON bytes to a domain event
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.registry[eventType]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	eventPtr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, eventPtr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	event, ok := eventPtr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("deserialized object does not implement DomainEvent")
	}

	return event, nil
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[eventType]
	return ok
}

// RegisteredTypes returns all registered event types
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.registry))
	for t := range s.registry {
		types = append(types, t)
	}
	return types
}
