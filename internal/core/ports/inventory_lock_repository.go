package ports

import (
	"context"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/shop"
)

// InventoryLockRepository defines the persistence contract for inventory
// reservations. At most one row exists per (shop, product) pair.
type InventoryLockRepository interface {
	// Acquire stores the reservation. An existing live lock held by another
	// order rejects the write with shop.ErrLockHeldByAnotherOrder; an expired
	// lock and the holder's own lock are replaced in place.
	Acquire(ctx context.Context, lock *shop.InventoryLock) error

	// GetAllForProduct retrieves every persisted reservation of the given
	// product, expired rows included. Callers filter liveness themselves.
	GetAllForProduct(ctx context.Context, productID kernel.UUID) ([]*shop.InventoryLock, error)

	// Release removes the reservation held by the given order, if any.
	Release(ctx context.Context, shopID, productID, orderID kernel.UUID) error

	// DeleteExpired removes every reservation whose expiry lies at or before
	// the given instant and returns the number of rows removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
