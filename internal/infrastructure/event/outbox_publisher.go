package event

import (
	"context"

	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shared"
)

// OutboxPublisher persists domain events to the outbox table instead of
// dispatching them directly. The outbox processor relays stored entries to
// the in-process bus, so events survive crashes between commit and delivery.
type OutboxPublisher struct {
	repo       shared.OutboxRepository
	serializer *EventSerializer
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(repo shared.OutboxRepository, serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{
		repo:       repo,
		serializer: serializer,
	}
}

// Publish stores events in the outbox for later delivery
func (p *OutboxPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	return p.repo.Save(ctx, entries...)
}

// PublishWithTx stores events in the outbox within the provided transaction,
// atomically with the aggregate changes.
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

var _ shared.EventPublisher = (*OutboxPublisher)(nil)
