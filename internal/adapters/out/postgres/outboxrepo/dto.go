// Package outboxrepo provides data transfer objects and mapping functions
// for the notification outbox.
package outboxrepo

import (
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/ports"

	"github.com/google/uuid"
)

// OutboxMessageDTO represents the database structure for staged status
// notifications.
type OutboxMessageDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	Status      string    `gorm:"size:32"`
	Version     int
	OccurredAt  time.Time
	PublishedAt *time.Time `gorm:"index"`
}

// TableName specifies the database table name for outbox messages.
func (OutboxMessageDTO) TableName() string {
	return "outbox_messages"
}

func fromDomain(message *ports.OutboxMessage) OutboxMessageDTO {
	return OutboxMessageDTO{
		ID:          message.ID.Bytes(),
		OrderID:     message.OrderID.Bytes(),
		Status:      message.Status,
		Version:     message.Version,
		OccurredAt:  message.OccurredAt,
		PublishedAt: message.PublishedAt,
	}
}

func toDomain(dto OutboxMessageDTO) (*ports.OutboxMessage, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return &ports.OutboxMessage{
		ID:          id,
		OrderID:     orderID,
		Status:      dto.Status,
		Version:     dto.Version,
		OccurredAt:  dto.OccurredAt,
		PublishedAt: dto.PublishedAt,
	}, nil
}
