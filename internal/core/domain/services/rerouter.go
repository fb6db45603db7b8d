package services

import (
	"errors"
	"math"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/domain/model/shop"
)

const (
	// DefaultSearchRadiusKm bounds the alternative-shop search around the
	// recipient's location.
	DefaultSearchRadiusKm = 5.0

	// riderAvgSpeedKmh is the fleet-wide average rider speed used for
	// delivery time estimates.
	riderAvgSpeedKmh = 25.0

	// pickupHandlingMinutes is the fixed per-stop handling overhead added to
	// every delivery estimate.
	pickupHandlingMinutes = 10.0

	distanceWeight    = 0.6
	performanceWeight = 0.4
)

// ErrNoAlternativeShop is returned when no eligible shop remains after
// filtering by category, vetting, radius and live inventory locks.
var ErrNoAlternativeShop = errors.New("no alternative shop available")

// Candidate is a scored alternative shop produced by the Rerouter. Lower
// score is better.
type Candidate struct {
	Shop *shop.Shop
	// DistanceKm is the candidate's distance to the recipient.
	DistanceKm float64
	// DistanceDeltaKm is the signed difference against the original shop's
	// distance to the recipient. Negative means the alternative is closer.
	DistanceDeltaKm float64
	Score           float64
}

// Rerouter is a domain service that selects a replacement shop for an order
// whose assigned shop declined or went unresponsive.
//
// Selection rules:
//   - Candidates must be approved, verified, active and serve the order's
//     category
//   - The original shop is never a candidate
//   - Candidates beyond the search radius from the recipient are excluded
//   - Candidates whose stock is locked by another order are excluded
//   - Among the survivors, the lowest blended score of distance and
//     performance wins; ties go to the higher performance score
type Rerouter struct {
	searchRadiusKm float64
}

// NewRerouter creates a Rerouter with the default search radius.
func NewRerouter() Rerouter {
	return Rerouter{searchRadiusKm: DefaultSearchRadiusKm}
}

// NewRerouterWithRadius creates a Rerouter with a custom search radius in
// kilometers. Non-positive values fall back to the default.
func NewRerouterWithRadius(radiusKm float64) Rerouter {
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}
	return Rerouter{searchRadiusKm: radiusKm}
}

// SearchRadiusKm returns the active search radius.
func (r Rerouter) SearchRadiusKm() float64 {
	return r.searchRadiusKm
}

// FindAlternative selects the best replacement shop for the order, or
// ErrNoAlternativeShop when every candidate is filtered out.
//
// The locks slice carries the live inventory reservations for the order's
// product; a candidate whose stock is reserved for a different order is
// skipped. The original shop is identified through the order's original
// assignment and is excluded regardless of its current state.
func (r Rerouter) FindAlternative(
	o *order.Order,
	originalShop *shop.Shop,
	candidates []*shop.Shop,
	locks []*shop.InventoryLock,
	now time.Time,
) (*Candidate, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	originalDistance, err := r.originalDistance(o, originalShop)
	if err != nil {
		return nil, err
	}

	lockedShops := lockedShopSet(locks, o.ID(), now)

	var best *Candidate
	for _, s := range candidates {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if s.ID().IsEqual(o.OriginalShopID()) || s.ID().IsEqual(o.ShopID()) {
			continue
		}

		eligible, err := s.CanFulfill(o.CategoryID())
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}

		if _, locked := lockedShops[s.ID().String()]; locked {
			continue
		}

		distance, err := s.DistanceKmTo(o.Recipient())
		if err != nil {
			return nil, err
		}
		if distance > r.searchRadiusKm {
			continue
		}

		candidate := &Candidate{
			Shop:            s,
			DistanceKm:      distance,
			DistanceDeltaKm: distance - originalDistance,
			Score:           score(distance, s.PerformanceScore()),
		}

		if best == nil || candidate.betterThan(best) {
			best = candidate
		}
	}

	if best == nil {
		return nil, ErrNoAlternativeShop
	}
	return best, nil
}

// OptimizePickupRoute orders the given pickup stops by repeatedly visiting
// the nearest unvisited stop, starting from the rider's position. It returns
// the indexes into stops in visit order.
func (r Rerouter) OptimizePickupRoute(start kernel.GeoPoint, stops []kernel.GeoPoint) ([]int, error) {
	if err := start.Validate(); err != nil {
		return nil, err
	}
	for _, s := range stops {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	route := make([]int, 0, len(stops))
	visited := make([]bool, len(stops))
	current := start

	for len(route) < len(stops) {
		bestIdx := -1
		bestDistance := math.MaxFloat64

		for i, s := range stops {
			if visited[i] {
				continue
			}
			d := current.DistanceKm(s)
			if d < bestDistance {
				bestDistance = d
				bestIdx = i
			}
		}

		visited[bestIdx] = true
		route = append(route, bestIdx)
		current = stops[bestIdx]
	}

	return route, nil
}

// EstimateDeliveryMinutes estimates how long the pickup-to-recipient leg
// takes at the fleet's average speed, plus the fixed handling overhead.
func (r Rerouter) EstimateDeliveryMinutes(pickup, recipient kernel.GeoPoint) (float64, error) {
	if err := errors.Join(pickup.Validate(), recipient.Validate()); err != nil {
		return 0, err
	}
	distance := pickup.DistanceKm(recipient)
	return distance/riderAvgSpeedKmh*60 + pickupHandlingMinutes, nil
}

// originalDistance resolves the original shop's distance to the recipient.
// When the original shop record is unavailable the delta baseline degrades
// to zero, which keeps the selection working on absolute distance alone.
func (r Rerouter) originalDistance(o *order.Order, originalShop *shop.Shop) (float64, error) {
	if originalShop == nil {
		return 0, nil
	}
	if err := originalShop.Validate(); err != nil {
		return 0, err
	}
	return originalShop.DistanceKmTo(o.Recipient())
}

// score blends normalized distance and performance. Distance is normalized
// against the default radius so the weights keep their meaning for custom
// radii as well.
func score(distanceKm float64, performance int) float64 {
	return distanceWeight*(distanceKm/DefaultSearchRadiusKm) +
		performanceWeight*(1-float64(performance)/shop.PerformanceScoreMax)
}

func (c *Candidate) betterThan(other *Candidate) bool {
	if c.Score != other.Score {
		return c.Score < other.Score
	}
	return c.Shop.PerformanceScore() > other.Shop.PerformanceScore()
}

// lockedShopSet returns the shops whose stock is reserved against the given
// order at the given instant.
func lockedShopSet(locks []*shop.InventoryLock, orderID kernel.UUID, now time.Time) map[string]struct{} {
	set := make(map[string]struct{}, len(locks))
	for _, l := range locks {
		if l.Blocks(orderID, now) {
			set[l.ShopID().String()] = struct{}{}
		}
	}
	return set
}
