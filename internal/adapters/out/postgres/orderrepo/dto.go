// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Indexed for the three hot lookups: idempotency admission, the escalation
// scan over active fulfillments and the escrow expiry scan.
type OrderDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdempotencyKey string    `gorm:"size:128;uniqueIndex"`

	Status          int `gorm:"index:idx_orders_status_changed;index:idx_orders_status_escrow"`
	Version         int
	StatusChangedAt time.Time `gorm:"index:idx_orders_status_changed"`

	ShopID         uuid.UUID  `gorm:"type:uuid;index"`
	OriginalShopID uuid.UUID  `gorm:"type:uuid"`
	RiderID        *uuid.UUID `gorm:"type:uuid;index"`

	ProductID       uuid.UUID `gorm:"type:uuid"`
	CategoryID      uuid.UUID `gorm:"type:uuid"`
	Quantity        int
	ReceiverContact string
	Recipient       GeoPointDTO `gorm:"embedded;embeddedPrefix:recipient_"`

	CollectionToken string `gorm:"size:16"`
	PaymentRef      string
	// The escrow sweep filters on (status, escrow_expires_at).
	EscrowExpiresAt *time.Time `gorm:"index:idx_orders_status_escrow"`

	AutoReroute          bool
	DeclineReason        *string
	RerouteDistanceDelta *float64

	PaidAt      *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CompletedAt *time.Time
	DeclinedAt  *time.Time
	ReroutedAt  *time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// GeoPointDTO represents the embedded recipient coordinate within the order table.
type GeoPointDTO struct {
	Latitude  float64 `gorm:"type:double precision"`
	Longitude float64 `gorm:"type:double precision"`
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var riderID *uuid.UUID
	if id := aggregate.RiderID(); id != nil {
		raw := id.Bytes()
		riderID = &raw
	}

	stamps := aggregate.Stamps()

	return OrderDTO{
		ID:              aggregate.ID().Bytes(),
		IdempotencyKey:  aggregate.IdempotencyKey(),
		Status:          int(aggregate.Status()),
		Version:         aggregate.Version(),
		StatusChangedAt: aggregate.StatusChangedAt(),
		ShopID:          aggregate.ShopID().Bytes(),
		OriginalShopID:  aggregate.OriginalShopID().Bytes(),
		RiderID:         riderID,
		ProductID:       aggregate.ProductID().Bytes(),
		CategoryID:      aggregate.CategoryID().Bytes(),
		Quantity:        aggregate.Quantity(),
		ReceiverContact: aggregate.ReceiverContact(),
		Recipient: GeoPointDTO{
			Latitude:  aggregate.Recipient().Latitude(),
			Longitude: aggregate.Recipient().Longitude(),
		},
		CollectionToken:      aggregate.CollectionToken(),
		PaymentRef:           aggregate.PaymentRef(),
		EscrowExpiresAt:      aggregate.EscrowExpiresAt(),
		AutoReroute:          aggregate.AutoReroute(),
		DeclineReason:        aggregate.DeclineReason(),
		RerouteDistanceDelta: aggregate.RerouteDistanceDelta(),
		PaidAt:               stamps.PaidAt,
		AssignedAt:           stamps.AssignedAt,
		PickedUpAt:           stamps.PickedUpAt,
		DeliveredAt:          stamps.DeliveredAt,
		CompletedAt:          stamps.CompletedAt,
		DeclinedAt:           stamps.DeclinedAt,
		ReroutedAt:           stamps.ReroutedAt,
	}
}

// toDomain converts a database DTO to an order domain aggregate using
// RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	shopID, err := kernel.UUIDFromBytes(dto.ShopID[:])
	if err != nil {
		return nil, err
	}
	originalShopID, err := kernel.UUIDFromBytes(dto.OriginalShopID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}
	categoryID, err := kernel.UUIDFromBytes(dto.CategoryID[:])
	if err != nil {
		return nil, err
	}

	var riderID *kernel.UUID
	if dto.RiderID != nil {
		rID, riderErr := kernel.UUIDFromBytes((*dto.RiderID)[:])
		if riderErr != nil {
			return nil, riderErr
		}
		riderID = &rID
	}

	recipient, err := kernel.NewGeoPoint(dto.Recipient.Latitude, dto.Recipient.Longitude)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		dto.IdempotencyKey,
		order.Status(dto.Status),
		dto.Version,
		dto.StatusChangedAt,
		shopID,
		originalShopID,
		riderID,
		productID,
		categoryID,
		dto.Quantity,
		dto.ReceiverContact,
		recipient,
		dto.CollectionToken,
		dto.PaymentRef,
		dto.EscrowExpiresAt,
		dto.AutoReroute,
		dto.DeclineReason,
		dto.RerouteDistanceDelta,
		order.Timestamps{
			PaidAt:      dto.PaidAt,
			AssignedAt:  dto.AssignedAt,
			PickedUpAt:  dto.PickedUpAt,
			DeliveredAt: dto.DeliveredAt,
			CompletedAt: dto.CompletedAt,
			DeclinedAt:  dto.DeclinedAt,
			ReroutedAt:  dto.ReroutedAt,
		},
	)
}
