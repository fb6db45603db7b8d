package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderStatusQueryHandler serves the sender-facing status endpoint. It
// reads the orders table directly and translates the stored status into the
// customer-facing message.
type GetOrderStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderStatusQueryHandler creates a handler for order status lookups.
func NewGetOrderStatusQueryHandler(db *gorm.DB) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{db: db}
}

// Handle executes the lookup. Returns errs.ErrObjectNotFound for unknown
// order ids.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	var (
		id              uuid.UUID
		status          int
		statusChangedAt time.Time
		riderID         sql.Null[uuid.UUID]
	)

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			status_changed_at,
			rider_id
		FROM orders
		WHERE id = ?
	`, query.OrderID().String()).Row()

	err := row.Scan(&id, &status, &statusChangedAt, &riderID)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderStatusQueryResponse{},
			errs.NewObjectNotFoundErrorWithCause("order id", query.OrderID(), err)
	}
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	orderStatus := order.Status(status)
	if err = orderStatus.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	return GetOrderStatusQueryResponse{
		ID:              orderID,
		Status:          orderStatus.String(),
		Message:         orderStatus.PublicMessage(),
		StatusChangedAt: statusChangedAt,
		RiderAssigned:   riderID.Valid,
	}, nil
}
