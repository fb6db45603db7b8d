// Package evidencerepo provides data transfer objects and mapping functions
// for delivery evidence persistence.
package evidencerepo

import (
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// DeliveryEvidenceDTO represents the database structure for delivery
// evidence records. One record exists per order.
type DeliveryEvidenceDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	PhotoURI   string
	FiscalCode string `gorm:"size:16"`
	CapturedAt time.Time
}

// TableName specifies the database table name for delivery evidence.
func (DeliveryEvidenceDTO) TableName() string {
	return "delivery_evidence"
}

func fromDomain(evidence *order.DeliveryEvidence) DeliveryEvidenceDTO {
	return DeliveryEvidenceDTO{
		ID:         evidence.ID().Bytes(),
		OrderID:    evidence.OrderID().Bytes(),
		PhotoURI:   evidence.PhotoURI(),
		FiscalCode: evidence.FiscalCode(),
		CapturedAt: evidence.CapturedAt(),
	}
}

func toDomain(dto DeliveryEvidenceDTO) (*order.DeliveryEvidence, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreDeliveryEvidence(id, orderID, dto.PhotoURI, dto.FiscalCode, dto.CapturedAt)
}
