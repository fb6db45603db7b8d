package order

import (
	"errors"
	"fmt"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder factory method or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order represents a gift transaction in the system. It is the aggregate root
// that manages the order lifecycle from admission through payment, fulfillment
// and delivery to completion.
//
// Order follows these invariants:
//   - Status only advances along edges of the canonical transition table
//   - Version increments by exactly 1 per accepted mutation; the persistence
//     layer rejects writes presented with a stale version
//   - The escrow expiry timestamp is set only while funds are held and is
//     cleared on any transition out of the Paid status
//   - The terminal Completed status is reachable only through the compliance
//     interlock consulted by the Transition Engine
//
// The struct uses private fields to ensure encapsulation; every mutation goes
// through a validated transition method.
type Order struct {
	id             kernel.UUID
	idempotencyKey string

	status          Status
	version         int
	statusChangedAt time.Time

	shopID         kernel.UUID
	originalShopID kernel.UUID
	riderID        *kernel.UUID

	productID       kernel.UUID
	categoryID      kernel.UUID
	quantity        int
	receiverContact string
	recipient       kernel.GeoPoint

	collectionToken string
	paymentRef      string
	escrowExpiresAt *time.Time

	autoReroute          bool
	declineReason        *string
	rerouteDistanceDelta *float64

	paidAt      *time.Time
	assignedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	completedAt *time.Time
	declinedAt  *time.Time
	reroutedAt  *time.Time

	isConstructed bool
}

// NewOrder creates a new Order at status Initiated with version 1.
//
// Parameters:
//   - id: unique order identifier
//   - idempotencyKey: client-supplied duplicate-collapse token (required)
//   - shopID: the originally requested fulfillment shop
//   - productID, categoryID: what is being gifted
//   - quantity: number of units (must be positive)
//   - receiverContact: how the recipient is reached (required)
//   - recipient: validated recipient geocoordinate
//   - collectionToken: pre-generated pickup token (required)
//   - autoReroute: whether the order may be rerouted automatically on decline
//
// Returns a validation error if any parameter is invalid.
func NewOrder(
	id kernel.UUID,
	idempotencyKey string,
	shopID kernel.UUID,
	productID kernel.UUID,
	categoryID kernel.UUID,
	quantity int,
	receiverContact string,
	recipient kernel.GeoPoint,
	collectionToken string,
	autoReroute bool,
) (*Order, error) {
	o := &Order{
		status:          Initiated,
		version:         1,
		statusChangedAt: time.Now().UTC(),
		autoReroute:     autoReroute,
		isConstructed:   true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setIdempotencyKey(idempotencyKey),
		o.setShops(shopID),
		o.setProduct(productID, categoryID, quantity),
		o.setReceiver(receiverContact, recipient),
		o.setCollectionToken(collectionToken),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence without replaying its
// transitions. It validates identity and structural invariants only; the
// stored status and version are trusted as the outcome of prior validated
// transitions.
func RestoreOrder(
	id kernel.UUID,
	idempotencyKey string,
	status Status,
	version int,
	statusChangedAt time.Time,
	shopID kernel.UUID,
	originalShopID kernel.UUID,
	riderID *kernel.UUID,
	productID kernel.UUID,
	categoryID kernel.UUID,
	quantity int,
	receiverContact string,
	recipient kernel.GeoPoint,
	collectionToken string,
	paymentRef string,
	escrowExpiresAt *time.Time,
	autoReroute bool,
	declineReason *string,
	rerouteDistanceDelta *float64,
	stamps Timestamps,
) (*Order, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause("version",
			fmt.Errorf("%d is not greater than 0", version))
	}

	o := &Order{
		status:               status,
		version:              version,
		statusChangedAt:      statusChangedAt,
		riderID:              riderID,
		paymentRef:           paymentRef,
		escrowExpiresAt:      escrowExpiresAt,
		autoReroute:          autoReroute,
		declineReason:        declineReason,
		rerouteDistanceDelta: rerouteDistanceDelta,
		paidAt:               stamps.PaidAt,
		assignedAt:           stamps.AssignedAt,
		pickedUpAt:           stamps.PickedUpAt,
		deliveredAt:          stamps.DeliveredAt,
		completedAt:          stamps.CompletedAt,
		declinedAt:           stamps.DeclinedAt,
		reroutedAt:           stamps.ReroutedAt,
		isConstructed:        true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setIdempotencyKey(idempotencyKey),
		o.setShops(shopID),
		o.setProduct(productID, categoryID, quantity),
		o.setReceiver(receiverContact, recipient),
		o.setCollectionToken(collectionToken),
	); err != nil {
		return nil, err
	}

	if err := originalShopID.Validate(); err != nil {
		return nil, err
	}
	o.originalShopID = originalShopID

	return o, nil
}

// Timestamps carries the per-transition timestamps of an order across the
// persistence boundary.
type Timestamps struct {
	PaidAt      *time.Time
	AssignedAt  *time.Time
	PickedUpAt  *time.Time
	DeliveredAt *time.Time
	CompletedAt *time.Time
	DeclinedAt  *time.Time
	ReroutedAt  *time.Time
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// IdempotencyKey returns the client-supplied duplicate-collapse token.
func (o *Order) IdempotencyKey() string {
	return o.idempotencyKey
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// Version returns the optimistic-lock version. It increments by exactly 1
// per accepted mutation.
func (o *Order) Version() int {
	return o.version
}

// StatusChangedAt returns when the current status was entered.
func (o *Order) StatusChangedAt() time.Time {
	return o.statusChangedAt
}

// ShopID returns the currently assigned fulfillment shop.
func (o *Order) ShopID() kernel.UUID {
	return o.shopID
}

// OriginalShopID returns the shop the order was first placed with. It is
// preserved across re-routes.
func (o *Order) OriginalShopID() kernel.UUID {
	return o.originalShopID
}

// RiderID returns the assigned rider's ID, or nil if unassigned.
func (o *Order) RiderID() *kernel.UUID {
	return o.riderID
}

// ProductID returns the gifted product identifier.
func (o *Order) ProductID() kernel.UUID {
	return o.productID
}

// CategoryID returns the product category identifier used for re-routing.
func (o *Order) CategoryID() kernel.UUID {
	return o.categoryID
}

// Quantity returns the number of units ordered.
func (o *Order) Quantity() int {
	return o.quantity
}

// ReceiverContact returns the recipient's contact handle.
func (o *Order) ReceiverContact() string {
	return o.receiverContact
}

// Recipient returns the recipient's geocoordinate.
func (o *Order) Recipient() kernel.GeoPoint {
	return o.recipient
}

// CollectionToken returns the human-readable pickup token.
func (o *Order) CollectionToken() string {
	return o.collectionToken
}

// PaymentRef returns the payment processor's reference, set when the charge
// is confirmed. It is the handle used for refunds.
func (o *Order) PaymentRef() string {
	return o.paymentRef
}

// EscrowExpiresAt returns the escrow deadline, or nil when no escrow clock
// is running.
func (o *Order) EscrowExpiresAt() *time.Time {
	return o.escrowExpiresAt
}

// AutoReroute reports whether the sender allowed automatic re-routing.
func (o *Order) AutoReroute() bool {
	return o.autoReroute
}

// DeclineReason returns the shop's stated decline reason, or nil.
func (o *Order) DeclineReason() *string {
	return o.declineReason
}

// RerouteDistanceDelta returns the signed distance delta in kilometers
// between the alternative and the original shop, or nil if never rerouted.
func (o *Order) RerouteDistanceDelta() *float64 {
	return o.rerouteDistanceDelta
}

// Stamps returns the per-transition timestamps.
func (o *Order) Stamps() Timestamps {
	return Timestamps{
		PaidAt:      o.paidAt,
		AssignedAt:  o.assignedAt,
		PickedUpAt:  o.pickedUpAt,
		DeliveredAt: o.deliveredAt,
		CompletedAt: o.completedAt,
		DeclinedAt:  o.declinedAt,
		ReroutedAt:  o.reroutedAt,
	}
}

// MarkPaid transitions Initiated -> Paid on a payment-confirmed event.
// Records the payment reference and starts the escrow expiry clock. Only the
// processor's server-to-server confirmation may drive this edge; the handler
// layer enforces the channel, the domain enforces the data.
func (o *Order) MarkPaid(paymentRef string, escrowExpiresAt time.Time) error {
	if paymentRef == "" {
		return errs.NewValueIsRequiredError("payment reference")
	}

	if err := o.changeStatus(Paid); err != nil {
		return err
	}

	now := time.Now().UTC()
	o.paidAt = &now
	o.paymentRef = paymentRef
	o.escrowExpiresAt = &escrowExpiresAt
	return nil
}

// MarkSettled transitions Paid -> Settled once the shop's payout account is
// verified.
func (o *Order) MarkSettled() error {
	return o.changeStatus(Settled)
}

// StartFulfillment transitions Settled -> Fulfilling (shop accepted) or
// AltFound -> Fulfilling (alternative shop takes over).
func (o *Order) StartFulfillment() error {
	return o.changeStatus(Fulfilling)
}

// RequireForceCall transitions Fulfilling -> ForceCallPending after the first
// escalation threshold.
func (o *Order) RequireForceCall() error {
	return o.changeStatus(ForceCallPending)
}

// StartRerouting transitions ForceCallPending -> Rerouting after the second
// escalation threshold.
func (o *Order) StartRerouting() error {
	return o.changeStatus(Rerouting)
}

// Decline records an explicit shop decline with its reason.
func (o *Order) Decline(reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("decline reason")
	}

	if err := o.changeStatus(Declined); err != nil {
		return err
	}

	now := time.Now().UTC()
	o.declinedAt = &now
	o.declineReason = &reason
	return nil
}

// AcceptAlternative transitions Declined/Rerouting -> AltFound, reassigning
// the order to the alternative shop and recording the signed distance delta
// against the original assignment. The original shop id is preserved.
func (o *Order) AcceptAlternative(altShopID kernel.UUID, distanceDeltaKm float64) error {
	if err := altShopID.Validate(); err != nil {
		return err
	}
	if altShopID.IsEqual(o.originalShopID) {
		return errs.NewPreconditionFailedError("alternative shop must differ from the original shop")
	}

	if err := o.changeStatus(AltFound); err != nil {
		return err
	}

	now := time.Now().UTC()
	o.shopID = altShopID
	o.reroutedAt = &now
	o.rerouteDistanceDelta = &distanceDeltaKm
	return nil
}

// Cancel transitions Declined/Rerouting -> Cancelled when no alternative
// shop exists. The caller is responsible for triggering the refund.
func (o *Order) Cancel() error {
	return o.changeStatus(Cancelled)
}

// AssignRider transitions Fulfilling -> Assigned. A rider id is required.
func (o *Order) AssignRider(riderID kernel.UUID) error {
	if err := riderID.Validate(); err != nil {
		return errs.NewPreconditionFailedErrorWithCause("rider id", err)
	}

	if err := o.changeStatus(Assigned); err != nil {
		return err
	}

	now := time.Now().UTC()
	o.riderID = &riderID
	o.assignedAt = &now
	return nil
}

// StartPickup transitions Assigned -> PickupEnRoute.
func (o *Order) StartPickup() error {
	return o.changeStatus(PickupEnRoute)
}

// MarkPickedUp transitions PickupEnRoute -> PickedUp after the shop verified
// the collection token presented by the rider.
func (o *Order) MarkPickedUp(presentedToken string) error {
	if presentedToken != o.collectionToken {
		return errs.NewPreconditionFailedError("collection token does not match")
	}

	if err := o.changeStatus(PickedUp); err != nil {
		return err
	}

	now := time.Now().UTC()
	o.pickedUpAt = &now
	return nil
}

// StartDelivery transitions PickedUp -> DeliveryEnRoute.
func (o *Order) StartDelivery() error {
	return o.changeStatus(DeliveryEnRoute)
}

// MarkDelivered transitions DeliveryEnRoute -> Delivered.
func (o *Order) MarkDelivered() error {
	if err := o.changeStatus(Delivered); err != nil {
		return err
	}

	now := time.Now().UTC()
	o.deliveredAt = &now
	return nil
}

// Confirm transitions Delivered -> Confirmed.
func (o *Order) Confirm() error {
	return o.changeStatus(Confirmed)
}

// RecordGratitude transitions Confirmed -> GratitudeSent.
func (o *Order) RecordGratitude() error {
	return o.changeStatus(GratitudeSent)
}

// Complete transitions GratitudeSent/HeldForReview -> Completed. The caller
// must have consulted the compliance interlock first; the domain only
// enforces the edge.
func (o *Order) Complete() error {
	if err := o.changeStatus(Completed); err != nil {
		return err
	}

	now := time.Now().UTC()
	o.completedAt = &now
	return nil
}

// HoldForReview transitions GratitudeSent -> HeldForReview when the
// compliance interlock does not pass.
func (o *Order) HoldForReview() error {
	return o.changeStatus(HeldForReview)
}

// ExpireEscrow transitions Paid -> Expired when the escrow deadline passed.
// The caller is responsible for triggering the refund.
func (o *Order) ExpireEscrow() error {
	return o.changeStatus(Expired)
}

// RaiseDispute transitions a delivered-phase status -> Disputed.
func (o *Order) RaiseDispute() error {
	return o.changeStatus(Disputed)
}

// ResolveDispute transitions Disputed -> Resolved.
func (o *Order) ResolveDispute() error {
	return o.changeStatus(Resolved)
}

// changeStatus applies a validated status transition. It bumps the version
// by exactly 1, stamps statusChangedAt and clears the escrow expiry when
// leaving the Paid status.
func (o *Order) changeStatus(target Status) error {
	if err := o.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}

	leavingEscrow := o.status.HoldsEscrow() && !newStatus.HoldsEscrow()

	o.status = newStatus
	o.version++
	o.statusChangedAt = time.Now().UTC()
	if leavingEscrow {
		o.escrowExpiresAt = nil
	}

	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setIdempotencyKey(key string) error {
	if key == "" {
		return errs.NewValueIsRequiredError("idempotency key")
	}
	o.idempotencyKey = key
	return nil
}

func (o *Order) setShops(shopID kernel.UUID) error {
	if err := shopID.Validate(); err != nil {
		return err
	}
	o.shopID = shopID
	if err := o.originalShopID.Validate(); err != nil {
		// First construction: the original assignment is the requested shop.
		o.originalShopID = shopID
	}
	return nil
}

func (o *Order) setProduct(productID, categoryID kernel.UUID, quantity int) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	if err := categoryID.Validate(); err != nil {
		return err
	}
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	o.productID = productID
	o.categoryID = categoryID
	o.quantity = quantity
	return nil
}

func (o *Order) setReceiver(contact string, recipient kernel.GeoPoint) error {
	if contact == "" {
		return errs.NewValueIsRequiredError("receiver contact")
	}
	if err := recipient.Validate(); err != nil {
		return err
	}
	o.receiverContact = contact
	o.recipient = recipient
	return nil
}

func (o *Order) setCollectionToken(tok string) error {
	if tok == "" {
		return errs.NewValueIsRequiredError("collection token")
	}
	o.collectionToken = tok
	return nil
}
