package ports

import (
	"context"
	"time"

	"giftflow/internal/core/domain/model/kernel"
)

// OutboxMessage is a status-change notification staged in the same
// transaction as the order write. A relay job delivers staged messages to
// the notification gateway and marks them published, which makes the
// notification at-least-once without a second write path.
type OutboxMessage struct {
	ID          kernel.UUID
	OrderID     kernel.UUID
	Status      string
	Version     int
	OccurredAt  time.Time
	PublishedAt *time.Time
}

// OutboxRepository defines the persistence contract for staged notifications.
type OutboxRepository interface {
	// Add stages a message inside the current transaction.
	Add(ctx context.Context, message *OutboxMessage) error

	// GetUnpublished retrieves up to limit staged messages in occurrence
	// order.
	GetUnpublished(ctx context.Context, limit int) ([]*OutboxMessage, error)

	// MarkPublished stamps the message as delivered.
	MarkPublished(ctx context.Context, id kernel.UUID, publishedAt time.Time) error
}
