package order

import (
	"giftflow/internal/pkg/errs"
)

// Status represents the lifecycle state of a gift order. Codes are integers
// namespaced by phase so that persisted values remain legible in the store
// and in logs:
//
//	100-199: initiation
//	200-299: payment (escrow)
//	300-399: fulfillment
//	400-499: completion (terminal success)
//	800-899: hold / review
//	900-999: failure / refund
//
// Status is a value object that validates state transitions against a single
// canonical edge table. The table is the authority: a transition not listed
// there is invalid everywhere, regardless of which caller requests it.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = 0

	// Initiated is the initial status when an order is first admitted.
	Initiated Status = 100

	// Paid indicates the payment processor confirmed the charge and funds
	// are held in escrow. The escrow expiry clock runs only in this status.
	Paid Status = 200

	// Settled indicates the fulfillment party's payout account was verified
	// by the settlement provider.
	Settled Status = 250

	// Fulfilling indicates the shop accepted the order and is preparing it.
	Fulfilling Status = 300

	// ForceCallPending indicates fulfillment stalled past the first
	// escalation threshold and an out-of-band voice call was requested.
	ForceCallPending Status = 305

	// Rerouting indicates fulfillment stalled past the second escalation
	// threshold and an alternative shop is being searched.
	Rerouting Status = 315

	// Declined indicates the shop explicitly refused the order.
	Declined Status = 320

	// AltFound indicates an alternative shop was selected and shadow-locked.
	AltFound Status = 325

	// Assigned indicates a delivery rider took the order.
	Assigned Status = 330

	// PickupEnRoute indicates the rider is heading to the shop.
	PickupEnRoute Status = 335

	// PickedUp indicates the rider collected the order from the shop.
	PickedUp Status = 340

	// DeliveryEnRoute indicates the rider is heading to the recipient.
	DeliveryEnRoute Status = 345

	// Delivered indicates the recipient received the order.
	Delivered Status = 350

	// Confirmed indicates the recipient confirmed receipt.
	Confirmed Status = 355

	// GratitudeSent indicates the recipient's thank-you was recorded.
	GratitudeSent Status = 360

	// Completed is the terminal success status. It is unreachable without a
	// recorded compliance proof.
	Completed Status = 400

	// HeldForReview indicates the completion interlock did not pass and the
	// order awaits external evidence or manual review.
	HeldForReview Status = 800

	// Disputed indicates the recipient or sender raised a dispute.
	Disputed Status = 810

	// Resolved indicates a dispute was settled by manual intervention.
	Resolved Status = 820

	// Cancelled indicates no fulfillment alternative existed and the order
	// was refunded.
	Cancelled Status = 900

	// Expired indicates the escrow hold timed out before fulfillment and the
	// payment was refunded.
	Expired Status = 910
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:          "Unknown",
		Initiated:        "Initiated",
		Paid:             "Paid",
		Settled:          "Settled",
		Fulfilling:       "Fulfilling",
		ForceCallPending: "ForceCallPending",
		Rerouting:        "Rerouting",
		Declined:         "Declined",
		AltFound:         "AltFound",
		Assigned:         "Assigned",
		PickupEnRoute:    "PickupEnRoute",
		PickedUp:         "PickedUp",
		DeliveryEnRoute:  "DeliveryEnRoute",
		Delivered:        "Delivered",
		Confirmed:        "Confirmed",
		GratitudeSent:    "GratitudeSent",
		Completed:        "Completed",
		HeldForReview:    "HeldForReview",
		Disputed:         "Disputed",
		Resolved:         "Resolved",
		Cancelled:        "Cancelled",
		Expired:          "Expired",
	}
}

// getTransitionTable returns the canonical edge table. Every accepted
// mutation of an order's status is an edge listed here; the Transition Engine
// re-validates against this table before applying any side effect.
func getTransitionTable() map[Status][]Status {
	return map[Status][]Status{
		Initiated: {Paid},
		Paid:      {Settled, Expired},
		Settled:   {Fulfilling, Declined},
		Fulfilling: {
			Assigned,         // rider takes the order
			ForceCallPending, // first escalation threshold
			Declined,
		},
		ForceCallPending: {Rerouting, Declined},
		Rerouting:        {AltFound, Cancelled, Declined},
		Declined:         {AltFound, Cancelled},
		AltFound:         {Fulfilling},
		Assigned:         {PickupEnRoute},
		PickupEnRoute:    {PickedUp},
		PickedUp:         {DeliveryEnRoute},
		DeliveryEnRoute:  {Delivered},
		Delivered:        {Confirmed, Disputed},
		Confirmed:        {GratitudeSent, Disputed},
		GratitudeSent:    {Completed, HeldForReview, Disputed},
		HeldForReview:    {Completed},
		Disputed:         {Resolved},
	}
}

// Validate checks if the Status value is part of the canonical enumeration.
// Unknown (0) and any unmapped value are invalid.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidError("status")
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidError("status")
	}
	return nil
}

// String returns the human-readable name of the status.
// Returns "Unknown" for invalid status values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// StatusFromString resolves a status by its canonical name.
// Returns a ValueIsInvalidError for names outside the enumeration.
func StatusFromString(name string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidError("status")
}

// CanTransitionTo reports whether the edge (s -> target) is listed in the
// canonical transition table.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range getTransitionTable()[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo validates the edge (s -> target) and returns the new status.
// Returns an InvalidTransitionError if the edge is not permitted.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}
	if !s.CanTransitionTo(target) {
		return Unknown, errs.NewInvalidTransitionError(s.String(), target.String())
	}
	return target, nil
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return len(getTransitionTable()[s]) == 0
}

// IsFulfillmentActive reports whether the status is one the escalation
// watchdog is responsible for: the order sits with a shop and the clock on
// stalled fulfillment is running.
func (s Status) IsFulfillmentActive() bool {
	return s == Fulfilling || s == ForceCallPending
}

// HoldsEscrow reports whether payment funds are held in escrow and the
// expiry clock applies.
func (s Status) HoldsEscrow() bool {
	return s == Paid
}

// PublicMessage returns the customer-facing description of the status. This
// is the only status-derived text exposed to clients; internal error kinds
// never reach this surface.
func (s Status) PublicMessage() string {
	switch s {
	case Initiated:
		return "Your gift order has been received."
	case Paid:
		return "Payment confirmed. Funds are held securely."
	case Settled:
		return "Shop payout verified. Notifying the shop."
	case Fulfilling:
		return "The shop is preparing your gift."
	case ForceCallPending:
		return "We are contacting the shop to speed things up."
	case Rerouting:
		return "Finding a nearby shop to fulfill your gift."
	case Declined:
		return "The shop could not fulfill this order. Looking for alternatives."
	case AltFound:
		return "A nearby shop has been found for your gift."
	case Assigned:
		return "A delivery rider has been assigned."
	case PickupEnRoute:
		return "The rider is on the way to the shop."
	case PickedUp:
		return "Your gift has been picked up."
	case DeliveryEnRoute:
		return "Your gift is on its way."
	case Delivered:
		return "Your gift has been delivered."
	case Confirmed:
		return "Delivery confirmed by the recipient."
	case GratitudeSent:
		return "A thank-you from the recipient is on its way to you."
	case Completed:
		return "Your gift journey is complete."
	case HeldForReview:
		return "Delivery is being verified. This can take a little while."
	case Disputed:
		return "This order is under review."
	case Resolved:
		return "The review of this order has been resolved."
	case Cancelled:
		return "The order was cancelled and your payment refunded."
	case Expired:
		return "The order timed out and your payment was refunded."
	default:
		return "Order status is being updated."
	}
}
