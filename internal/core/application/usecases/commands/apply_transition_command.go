package commands

import (
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/pkg/guard"
)

var (
	ErrApplyTransitionCommandIsNotConstructed = errors.New(
		"ApplyTransitionCommand must be created via NewApplyTransitionCommand constructor",
	)
	ErrPaymentRefIsRequired = errors.New("payment reference is required")
	ErrRiderIDIsRequired    = errors.New("rider id is required")
	ErrTokenIsRequired      = errors.New("collection token is required")
	ErrPhotoURIIsRequired   = errors.New("photo uri is required")
	ErrReasonIsRequired     = errors.New("decline reason is required")
)

// TransitionParams carries the status-specific inputs of a transition.
// Only the fields the target status needs are consulted; the constructor
// validates presence per target.
type TransitionParams struct {
	// PaymentRef is the processor reference, required for the paid status.
	PaymentRef string
	// EscrowExpiresAt overrides the escrow deadline; zero means the handler
	// applies its configured default.
	EscrowExpiresAt time.Time
	// RiderID is required for the assigned status.
	RiderID kernel.UUID
	// PresentedToken is the collection token shown at pickup.
	PresentedToken string
	// PhotoURI is the handover photo location, required for delivered.
	PhotoURI string
	// Reason is the shop's decline reason, required for declined.
	Reason string
}

// ApplyTransitionCommand represents an externally driven request to advance
// one order to a target status. It is the single write entry point for
// webhook and API driven transitions; the watchdog sweeps have their own
// commands.
type ApplyTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	params  TransitionParams

	guard guard.ConstructorGuard
}

// NewApplyTransitionCommand creates a transition command for the given order
// and target status. Status-specific parameters are validated here so a
// malformed request never reaches the aggregate.
func NewApplyTransitionCommand(
	orderID kernel.UUID,
	target order.Status,
	params TransitionParams,
) (ApplyTransitionCommand, error) {
	cmd := ApplyTransitionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setParams(target, params),
	); err != nil {
		return ApplyTransitionCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyTransitionCommand) Validate() error {
	return c.guard.Validate(ErrApplyTransitionCommandIsNotConstructed)
}

// OrderID returns the order to advance.
func (c ApplyTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested target status.
func (c ApplyTransitionCommand) Target() order.Status {
	return c.target
}

// Params returns the status-specific inputs.
func (c ApplyTransitionCommand) Params() TransitionParams {
	return c.params
}

func (c *ApplyTransitionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ApplyTransitionCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}

func (c *ApplyTransitionCommand) setParams(target order.Status, params TransitionParams) error {
	switch target {
	case order.Paid:
		if params.PaymentRef == "" {
			return ErrPaymentRefIsRequired
		}
	case order.Assigned:
		if err := params.RiderID.Validate(); err != nil {
			return ErrRiderIDIsRequired
		}
	case order.PickedUp:
		if params.PresentedToken == "" {
			return ErrTokenIsRequired
		}
	case order.Delivered:
		if params.PhotoURI == "" {
			return ErrPhotoURIIsRequired
		}
	case order.Declined:
		if params.Reason == "" {
			return ErrReasonIsRequired
		}
	}

	c.params = params
	return nil
}
