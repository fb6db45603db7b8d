package shoprepo

import (
	"context"
	"errors"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/shop"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"

	"gorm.io/gorm"
)

var _ ports.ShopRepository = &GormShopRepository{}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormShopRepository implements the ShopRepository interface using GORM.
type GormShopRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// NewGormShopRepository creates a new instance of GormShopRepository.
func NewGormShopRepository(db *gorm.DB, tracker aggregateTracker) *GormShopRepository {
	return &GormShopRepository{db: db, tracker: tracker}
}

// Add persists a new shop aggregate to the database.
func (r *GormShopRepository) Add(ctx context.Context, aggregate *shop.Shop) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update persists changes to an existing shop aggregate.
func (r *GormShopRepository) Update(ctx context.Context, aggregate *shop.Shop) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).
		Model(&ShopDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a shop aggregate by its unique identifier.
func (r *GormShopRepository) Get(ctx context.Context, id kernel.UUID) (*shop.Shop, error) {
	var dto ShopDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shop id", id)
		}
		return nil, err
	}

	aggregate, err := toDomain(dto)
	if err != nil {
		return nil, err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return aggregate, nil
}

// GetAllByCategory retrieves every approved, verified and active shop
// serving the given category.
func (r *GormShopRepository) GetAllByCategory(ctx context.Context, categoryID kernel.UUID) ([]*shop.Shop, error) {
	var dtos []ShopDTO
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND approved AND verified AND active", categoryID.Bytes()).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	aggregates := make([]*shop.Shop, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		r.tracker.TrackAggregate(aggregate.ID(), aggregate)
		aggregates = append(aggregates, aggregate)
	}
	return aggregates, nil
}
