package shop

import (
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/pkg/errs"
	"giftflow/internal/pkg/guard"
)

// DefaultLockTTL is how long a reservation shields stock from concurrent
// re-routes before it is considered abandoned.
const DefaultLockTTL = 15 * time.Minute

var (
	// ErrLockHeldByAnotherOrder indicates that the product is already reserved
	// for a different order and the reservation has not yet expired.
	ErrLockHeldByAnotherOrder = errors.New("inventory is locked by another order")

	// ErrInventoryLockIsNotConstructed indicates that the InventoryLock was not
	// created through the NewInventoryLock constructor.
	ErrInventoryLockIsNotConstructed = errors.New("InventoryLock must be created via NewInventoryLock constructor")
)

// InventoryLock is a short-lived reservation of a product at a shop on behalf
// of one order. It prevents two concurrent re-routes from promising the same
// stock to different senders.
//
// A lock is identified by the (shopID, productID) pair: per product and shop
// there is at most one live lock. An expired lock is dead weight: it may be
// replaced by any order and is periodically swept by a janitor job.
type InventoryLock struct {
	// shopID is the shop whose stock is reserved
	shopID kernel.UUID
	// productID is the reserved product
	productID kernel.UUID
	// orderID is the order holding the reservation
	orderID kernel.UUID
	// expiresAt is when the reservation lapses
	expiresAt time.Time
	// guard ensures the lock was properly constructed
	guard guard.ConstructorGuard
}

// NewInventoryLock creates a reservation of the given product at the given
// shop for the given order, expiring after ttl.
func NewInventoryLock(shopID, productID, orderID kernel.UUID, ttl time.Duration) (*InventoryLock, error) {
	if ttl <= 0 {
		return nil, errs.NewValueIsInvalidError("lock ttl")
	}
	return RestoreInventoryLock(shopID, productID, orderID, time.Now().UTC().Add(ttl))
}

// RestoreInventoryLock reconstructs an InventoryLock from persistent storage.
func RestoreInventoryLock(shopID, productID, orderID kernel.UUID, expiresAt time.Time) (*InventoryLock, error) {
	lock := &InventoryLock{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		lock.setShopID(shopID),
		lock.setProductID(productID),
		lock.setOrderID(orderID),
	); err != nil {
		return nil, err
	}

	if expiresAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("lock expiry")
	}
	lock.expiresAt = expiresAt

	return lock, nil
}

// Validate checks if the InventoryLock was properly constructed.
func (l *InventoryLock) Validate() error {
	if l == nil {
		return ErrInventoryLockIsNotConstructed
	}
	return l.guard.Validate(ErrInventoryLockIsNotConstructed)
}

// ShopID returns the shop whose stock is reserved.
func (l *InventoryLock) ShopID() kernel.UUID {
	return l.shopID
}

// ProductID returns the reserved product.
func (l *InventoryLock) ProductID() kernel.UUID {
	return l.productID
}

// OrderID returns the order holding the reservation.
func (l *InventoryLock) OrderID() kernel.UUID {
	return l.orderID
}

// ExpiresAt returns when the reservation lapses.
func (l *InventoryLock) ExpiresAt() time.Time {
	return l.expiresAt
}

// IsExpired reports whether the reservation has lapsed at the given instant.
func (l *InventoryLock) IsExpired(now time.Time) bool {
	return !now.Before(l.expiresAt)
}

// IsHeldBy reports whether the given order holds this reservation.
func (l *InventoryLock) IsHeldBy(orderID kernel.UUID) bool {
	return l.orderID.IsEqual(orderID)
}

// Blocks reports whether this lock prevents the given order from reserving
// the same product. A lock held by the same order, or an expired lock, does
// not block.
func (l *InventoryLock) Blocks(orderID kernel.UUID, now time.Time) bool {
	if l.IsExpired(now) {
		return false
	}
	return !l.IsHeldBy(orderID)
}

func (l *InventoryLock) setShopID(shopID kernel.UUID) error {
	if err := shopID.Validate(); err != nil {
		return err
	}
	l.shopID = shopID
	return nil
}

func (l *InventoryLock) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	l.productID = productID
	return nil
}

func (l *InventoryLock) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	l.orderID = orderID
	return nil
}
