package ports

import (
	"context"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
)

// EvidenceRepository defines the persistence contract for delivery evidence
// records. Evidence is keyed by order: one record per order.
type EvidenceRepository interface {
	// Add persists a new evidence record.
	Add(ctx context.Context, evidence *order.DeliveryEvidence) error

	// Update persists changes to an existing evidence record, typically the
	// late-arriving fiscal code.
	Update(ctx context.Context, evidence *order.DeliveryEvidence) error

	// GetByOrderID retrieves the evidence record for the given order, or
	// errs.ErrObjectNotFound when none exists.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*order.DeliveryEvidence, error)
}
