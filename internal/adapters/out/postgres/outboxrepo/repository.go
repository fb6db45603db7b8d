package outboxrepo

import (
	"context"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"

	"gorm.io/gorm"
)

var _ ports.OutboxRepository = &GormOutboxRepository{}

// GormOutboxRepository implements the OutboxRepository interface using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates a new instance of GormOutboxRepository.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add stages a message inside the current transaction.
func (r *GormOutboxRepository) Add(ctx context.Context, message *ports.OutboxMessage) error {
	if message == nil {
		return errs.NewValueIsRequiredError("message")
	}

	dto := fromDomain(message)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// GetUnpublished retrieves up to limit staged messages in occurrence order.
func (r *GormOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*ports.OutboxMessage, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsInvalidError("limit")
	}

	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("occurred_at ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		message, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// MarkPublished stamps the message as delivered.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id = ?", id.Bytes()).
		Update("published_at", publishedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message id", id)
	}
	return nil
}
