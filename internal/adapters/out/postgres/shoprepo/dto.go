// Package shoprepo provides data transfer objects and mapping functions for shop persistence.
package shoprepo

import (
	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/shop"

	"github.com/google/uuid"
)

// ShopDTO represents the database structure for persisting shop aggregates.
type ShopDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string
	Location         GeoPointDTO `gorm:"embedded;embeddedPrefix:location_"`
	CategoryID       uuid.UUID   `gorm:"type:uuid;index"`
	PerformanceScore int
	Approved         bool
	Verified         bool
	Active           bool
}

// TableName specifies the database table name for shop entities.
func (ShopDTO) TableName() string {
	return "shops"
}

// GeoPointDTO represents the embedded shop coordinate within the shops table.
type GeoPointDTO struct {
	Latitude  float64 `gorm:"type:double precision"`
	Longitude float64 `gorm:"type:double precision"`
}

func fromDomain(aggregate *shop.Shop) ShopDTO {
	return ShopDTO{
		ID:   aggregate.ID().Bytes(),
		Name: aggregate.Name(),
		Location: GeoPointDTO{
			Latitude:  aggregate.Location().Latitude(),
			Longitude: aggregate.Location().Longitude(),
		},
		CategoryID:       aggregate.CategoryID().Bytes(),
		PerformanceScore: aggregate.PerformanceScore(),
		Approved:         aggregate.IsApproved(),
		Verified:         aggregate.IsVerified(),
		Active:           aggregate.IsActive(),
	}
}

func toDomain(dto ShopDTO) (*shop.Shop, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	categoryID, err := kernel.UUIDFromBytes(dto.CategoryID[:])
	if err != nil {
		return nil, err
	}
	location, err := kernel.NewGeoPoint(dto.Location.Latitude, dto.Location.Longitude)
	if err != nil {
		return nil, err
	}

	return shop.RestoreShop(
		id,
		dto.Name,
		location,
		categoryID,
		dto.PerformanceScore,
		dto.Approved,
		dto.Verified,
		dto.Active,
	)
}
