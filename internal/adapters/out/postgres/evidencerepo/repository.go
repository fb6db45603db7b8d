package evidencerepo

import (
	"context"
	"errors"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"

	"gorm.io/gorm"
)

var _ ports.EvidenceRepository = &GormEvidenceRepository{}

// GormEvidenceRepository implements the EvidenceRepository interface using
// GORM.
type GormEvidenceRepository struct {
	db *gorm.DB
}

// NewGormEvidenceRepository creates a new instance of GormEvidenceRepository.
func NewGormEvidenceRepository(db *gorm.DB) *GormEvidenceRepository {
	return &GormEvidenceRepository{db: db}
}

// Add persists a new evidence record.
func (r *GormEvidenceRepository) Add(ctx context.Context, evidence *order.DeliveryEvidence) error {
	if err := evidence.Validate(); err != nil {
		return err
	}

	dto := fromDomain(evidence)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update persists changes to an existing evidence record.
func (r *GormEvidenceRepository) Update(ctx context.Context, evidence *order.DeliveryEvidence) error {
	if err := evidence.Validate(); err != nil {
		return err
	}

	dto := fromDomain(evidence)
	return r.db.WithContext(ctx).
		Model(&DeliveryEvidenceDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto).Error
}

// GetByOrderID retrieves the evidence record for the given order.
func (r *GormEvidenceRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*order.DeliveryEvidence, error) {
	var dto DeliveryEvidenceDTO
	err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order id", orderID)
		}
		return nil, err
	}

	return toDomain(dto)
}
