// Package queries contains read-only operations for the CQRS architecture.
// Query handlers read the database directly and return plain response
// structs, bypassing the aggregate layer.
package queries

import (
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/pkg/guard"
)

var ErrGetOrderStatusQueryIsNotConstructed = errors.New(
	"GetOrderStatusQuery must be created via NewGetOrderStatusQuery constructor",
)

// GetOrderStatusQuery retrieves the sender-facing view of one order.
type GetOrderStatusQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderStatusQuery creates a query for the given order.
func NewGetOrderStatusQuery(orderID kernel.UUID) (GetOrderStatusQuery, error) {
	query := GetOrderStatusQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := query.setOrderID(orderID); err != nil {
		return GetOrderStatusQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusQueryIsNotConstructed)
}

// OrderID returns the order to look up.
func (q GetOrderStatusQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q *GetOrderStatusQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	q.orderID = orderID
	return nil
}

// GetOrderStatusQueryResponse is the sender-facing order view. Message is
// derived from the status; internal details like shop identities or decline
// reasons are deliberately absent.
type GetOrderStatusQueryResponse struct {
	ID              kernel.UUID
	Status          string
	Message         string
	StatusChangedAt time.Time
	RiderAssigned   bool
}
