// Package ports defines the persistence and gateway contracts between the
// domain layer and infrastructure, enabling dependency inversion and
// testability.
package ports

import (
	"context"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using
	// compare-and-swap on the version column. When another writer advanced
	// the row first, the write is rejected with errs.ErrVersionConflict and
	// no state is changed.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByIdempotencyKey retrieves the order admitted under the given
	// idempotency key, or errs.ErrObjectNotFound when the key is unseen.
	GetByIdempotencyKey(ctx context.Context, key string) (*order.Order, error)

	// GetAllFulfillmentActive retrieves every order sitting in an active
	// fulfillment status. The escalation watchdog scans this set.
	GetAllFulfillmentActive(ctx context.Context) ([]*order.Order, error)

	// GetAllAwaitingReroute retrieves every order parked on a re-route
	// decision (rerouting after an escalation, or declined without a
	// recorded outcome). The escalation watchdog resumes these.
	GetAllAwaitingReroute(ctx context.Context) ([]*order.Order, error)

	// GetAllEscrowExpired retrieves every order still holding escrow whose
	// expiry deadline lies at or before the given instant.
	GetAllEscrowExpired(ctx context.Context, now time.Time) ([]*order.Order, error)
}
