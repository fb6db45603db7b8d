package lockrepo

import (
	"context"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/shop"
	"giftflow/internal/core/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ ports.InventoryLockRepository = &GormInventoryLockRepository{}

// GormInventoryLockRepository implements the InventoryLockRepository
// interface using GORM.
type GormInventoryLockRepository struct {
	db *gorm.DB
}

// NewGormInventoryLockRepository creates a new instance of
// GormInventoryLockRepository.
func NewGormInventoryLockRepository(db *gorm.DB) *GormInventoryLockRepository {
	return &GormInventoryLockRepository{db: db}
}

// Acquire stores the reservation. The conflict clause only overwrites a row
// that has expired or belongs to the same order, so a live lock held by
// another order leaves zero rows affected.
func (r *GormInventoryLockRepository) Acquire(ctx context.Context, lock *shop.InventoryLock) error {
	if err := lock.Validate(); err != nil {
		return err
	}

	dto := fromDomain(lock)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"order_id":   dto.OrderID,
			"expires_at": dto.ExpiresAt,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Or(
				clause.Lte{Column: clause.Column{Table: "inventory_locks", Name: "expires_at"}, Value: time.Now().UTC()},
				clause.Eq{Column: clause.Column{Table: "inventory_locks", Name: "order_id"}, Value: dto.OrderID},
			),
		}},
	}).Create(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shop.ErrLockHeldByAnotherOrder
	}
	return nil
}

// GetAllForProduct retrieves every persisted reservation of the given
// product, expired rows included.
func (r *GormInventoryLockRepository) GetAllForProduct(ctx context.Context, productID kernel.UUID) ([]*shop.InventoryLock, error) {
	var dtos []InventoryLockDTO
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID.Bytes()).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	locks := make([]*shop.InventoryLock, 0, len(dtos))
	for _, dto := range dtos {
		lock, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		locks = append(locks, lock)
	}
	return locks, nil
}

// Release removes the reservation held by the given order, if any.
func (r *GormInventoryLockRepository) Release(ctx context.Context, shopID, productID, orderID kernel.UUID) error {
	return r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id = ? AND order_id = ?",
			shopID.Bytes(), productID.Bytes(), orderID.Bytes()).
		Delete(&InventoryLockDTO{}).Error
}

// DeleteExpired removes every reservation whose expiry lies at or before the
// given instant.
func (r *GormInventoryLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&InventoryLockDTO{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
