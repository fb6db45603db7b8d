package orderrepo

import (
	"context"
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"

	"gorm.io/gorm"
)

var _ ports.OrderRepository = &GormOrderRepository{}

// aggregateTracker registers loaded or stored aggregates with the owning
// unit of work so domain events can be collected on commit.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormOrderRepository implements the OrderRepository interface using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// NewGormOrderRepository creates a new instance of GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{db: db, tracker: tracker}
}

// Add persists a new order aggregate to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
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

// Update persists changes to an existing order aggregate. The write is
// guarded by the version the aggregate held before its last transition;
// a concurrent writer that got there first leaves zero rows affected.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)

	// Select("*") forces zero and nil columns to be written too, so a
	// cleared escrow deadline actually lands as NULL.
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, dto.Version-1).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewVersionConflictError("order id", aggregate.ID(), aggregate.Version()-1)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order aggregate by its unique identifier.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order id", id)
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

// GetByIdempotencyKey retrieves the order admitted under the given key,
// or an ObjectNotFoundError when no admission used it yet.
func (r *GormOrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).First(&dto, "idempotency_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("idempotency key", key)
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

// GetAllFulfillmentActive retrieves every order currently waiting on a shop,
// that is in Fulfilling or ForceCallPending status.
func (r *GormOrderRepository) GetAllFulfillmentActive(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status IN ?", []int{int(order.Fulfilling), int(order.ForceCallPending)}).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return r.restoreAll(dtos)
}

// GetAllAwaitingReroute retrieves every order stuck on a re-route decision:
// Rerouting after an escalation, or Declined when the inline re-route never
// finished. The escalation sweep drives these to AltFound or Cancelled.
func (r *GormOrderRepository) GetAllAwaitingReroute(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status IN ?", []int{int(order.Rerouting), int(order.Declined)}).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return r.restoreAll(dtos)
}

// GetAllEscrowExpired retrieves every paid order whose escrow deadline has
// passed at the given instant.
func (r *GormOrderRepository) GetAllEscrowExpired(ctx context.Context, now time.Time) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND escrow_expires_at <= ?", int(order.Paid), now).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return r.restoreAll(dtos)
}

func (r *GormOrderRepository) restoreAll(dtos []OrderDTO) ([]*order.Order, error) {
	aggregates := make([]*order.Order, 0, len(dtos))
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
