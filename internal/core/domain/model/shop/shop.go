package shop

import (
	"errors"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/pkg/errs"
	"giftflow/internal/pkg/guard"
)

const (
	// PerformanceScoreMin is the lowest admissible performance score.
	PerformanceScoreMin = 0
	// PerformanceScoreMax is the highest admissible performance score.
	PerformanceScoreMax = 100
)

// Domain errors for shop operations.
var (
	// ErrNameIsRequired is returned when attempting to create a shop without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrShopIsNotConstructed is returned when using an improperly initialized Shop.
	ErrShopIsNotConstructed = errors.New("Shop must be created via NewShop constructor")
)

// Shop represents a partner gift shop that fulfills orders. It is an aggregate
// root that carries the attributes the re-routing engine selects on: fixed
// location, served category, vetting flags and the rolling performance score.
//
// Shops are read-mostly from the orchestrator's point of view. Onboarding and
// score maintenance happen in a separate back office; here the aggregate only
// exposes eligibility checks and distance math.
type Shop struct {
	// id uniquely identifies the shop
	id kernel.UUID
	// name is the human-readable shop name
	name string
	// location is the shop's fixed pickup coordinate
	location kernel.GeoPoint
	// categoryID is the product category the shop serves
	categoryID kernel.UUID
	// performanceScore is the rolling fulfillment quality score, 0 to 100
	performanceScore int
	// approved reports whether the shop passed partner onboarding
	approved bool
	// verified reports whether the shop's payout account is verified
	verified bool
	// active reports whether the shop currently accepts orders
	active bool
	// guard ensures the shop was properly constructed
	guard guard.ConstructorGuard
}

// NewShop creates a new Shop with the specified parameters.
//
// The constructor validates all input parameters. A freshly onboarded shop
// starts unapproved, unverified and inactive; the flags are flipped by the
// back office as vetting progresses.
func NewShop(
	id kernel.UUID,
	name string,
	location kernel.GeoPoint,
	categoryID kernel.UUID,
	performanceScore int,
) (*Shop, error) {
	shop := &Shop{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		shop.setID(id),
		shop.setName(name),
		shop.setLocation(location),
		shop.setCategoryID(categoryID),
		shop.setPerformanceScore(performanceScore),
	); err != nil {
		return nil, err
	}

	return shop, nil
}

// RestoreShop reconstructs a Shop aggregate from persistent storage, including
// its vetting flags.
func RestoreShop(
	id kernel.UUID,
	name string,
	location kernel.GeoPoint,
	categoryID kernel.UUID,
	performanceScore int,
	approved bool,
	verified bool,
	active bool,
) (*Shop, error) {
	shop, err := NewShop(id, name, location, categoryID, performanceScore)
	if err != nil {
		return nil, err
	}

	shop.approved = approved
	shop.verified = verified
	shop.active = active
	return shop, nil
}

// IsEqual compares two shops by their unique identifiers.
func (s *Shop) IsEqual(other *Shop) bool {
	if other == nil {
		return false
	}
	return s.id.IsEqual(other.id)
}

// Validate checks if the Shop was properly constructed via NewShop.
// The zero value of Shop is invalid and fails this validation.
func (s *Shop) Validate() error {
	if s == nil {
		return ErrShopIsNotConstructed
	}
	return s.guard.Validate(ErrShopIsNotConstructed)
}

// ID returns the shop's unique identifier.
func (s *Shop) ID() kernel.UUID {
	return s.id
}

// Name returns the shop's human-readable name.
func (s *Shop) Name() string {
	return s.name
}

// Location returns the shop's fixed pickup coordinate.
func (s *Shop) Location() kernel.GeoPoint {
	return s.location
}

// CategoryID returns the product category the shop serves.
func (s *Shop) CategoryID() kernel.UUID {
	return s.categoryID
}

// PerformanceScore returns the shop's rolling quality score, 0 to 100.
func (s *Shop) PerformanceScore() int {
	return s.performanceScore
}

// IsApproved reports whether the shop passed partner onboarding.
func (s *Shop) IsApproved() bool {
	return s.approved
}

// IsVerified reports whether the shop's payout account is verified.
func (s *Shop) IsVerified() bool {
	return s.verified
}

// IsActive reports whether the shop currently accepts orders.
func (s *Shop) IsActive() bool {
	return s.active
}

// Approve marks the shop as having passed partner onboarding.
func (s *Shop) Approve() error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.approved = true
	return nil
}

// Verify marks the shop's payout account as verified.
func (s *Shop) Verify() error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.verified = true
	return nil
}

// Activate opens the shop for new orders.
func (s *Shop) Activate() error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.active = true
	return nil
}

// Deactivate stops the shop from receiving new orders. Orders already in
// flight are unaffected.
func (s *Shop) Deactivate() error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.active = false
	return nil
}

// UpdatePerformanceScore replaces the rolling quality score.
func (s *Shop) UpdatePerformanceScore(score int) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return s.setPerformanceScore(score)
}

// CanFulfill reports whether the shop is a valid re-routing candidate for the
// given category: approved, verified, active and serving that category.
func (s *Shop) CanFulfill(categoryID kernel.UUID) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	if err := categoryID.Validate(); err != nil {
		return false, err
	}

	return s.approved && s.verified && s.active && s.categoryID.IsEqual(categoryID), nil
}

// DistanceKmTo returns the great-circle distance in kilometers between the
// shop and the given point.
func (s *Shop) DistanceKmTo(point kernel.GeoPoint) (float64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	return s.location.DistanceKm(point), nil
}

// setID sets the shop's unique identifier with validation.
func (s *Shop) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	s.id = id
	return nil
}

// setName sets the shop's name with validation.
func (s *Shop) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}

	s.name = name
	return nil
}

// setLocation sets the shop's pickup coordinate with validation.
func (s *Shop) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	s.location = location
	return nil
}

// setCategoryID sets the served category with validation.
func (s *Shop) setCategoryID(categoryID kernel.UUID) error {
	if err := categoryID.Validate(); err != nil {
		return err
	}

	s.categoryID = categoryID
	return nil
}

// setPerformanceScore sets the rolling quality score with range validation.
func (s *Shop) setPerformanceScore(score int) error {
	if score < PerformanceScoreMin || score > PerformanceScoreMax {
		return errs.NewValueIsOutOfRangeError("performance score", score,
			PerformanceScoreMin, PerformanceScoreMax)
	}

	s.performanceScore = score
	return nil
}
