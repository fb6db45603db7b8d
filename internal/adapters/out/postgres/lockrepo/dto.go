// Package lockrepo provides data transfer objects and mapping functions for
// inventory reservation persistence.
package lockrepo

import (
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/shop"

	"github.com/google/uuid"
)

// InventoryLockDTO represents the database structure for inventory
// reservations. The (shop, product) pair is the primary key, so at most one
// reservation exists per slot.
type InventoryLockDTO struct {
	ShopID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"`
	ExpiresAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for inventory reservations.
func (InventoryLockDTO) TableName() string {
	return "inventory_locks"
}

func fromDomain(lock *shop.InventoryLock) InventoryLockDTO {
	return InventoryLockDTO{
		ShopID:    lock.ShopID().Bytes(),
		ProductID: lock.ProductID().Bytes(),
		OrderID:   lock.OrderID().Bytes(),
		ExpiresAt: lock.ExpiresAt(),
	}
}

func toDomain(dto InventoryLockDTO) (*shop.InventoryLock, error) {
	shopID, err := kernel.UUIDFromBytes(dto.ShopID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return shop.RestoreInventoryLock(shopID, productID, orderID, dto.ExpiresAt)
}
