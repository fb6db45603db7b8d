package ports

import (
	"context"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/shop"
)

// ShopRepository defines the persistence contract for shop aggregates.
type ShopRepository interface {
	// Add persists a new shop aggregate to storage.
	Add(ctx context.Context, aggregate *shop.Shop) error

	// Update persists changes to an existing shop aggregate.
	Update(ctx context.Context, aggregate *shop.Shop) error

	// Get retrieves a shop aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*shop.Shop, error)

	// GetAllByCategory retrieves every approved, verified and active shop
	// serving the given category. The re-routing engine narrows this set
	// by radius and inventory locks afterwards.
	GetAllByCategory(ctx context.Context, categoryID kernel.UUID) ([]*shop.Shop, error)
}
