package commands

import (
	"context"
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/domain/services"
	"giftflow/internal/pkg/errs"
)

// DefaultEscrowTTL is how long escrowed funds wait for settlement before the
// escrow watchdog expires the order.
const DefaultEscrowTTL = 48 * time.Hour

// ApplyTransitionCommandHandler advances a single order to a requested
// status. It owns the status-specific side effects: recording payment data,
// creating delivery evidence, and consulting the completion interlock before
// the terminal status.
type ApplyTransitionCommandHandler struct {
	uowFactory TransitionUoWFactory
	interlock  services.CompletionInterlock
	escrowTTL  time.Duration
}

// NewApplyTransitionCommandHandler creates a handler for externally driven
// transitions with the default escrow deadline.
func NewApplyTransitionCommandHandler(
	uowFactory TransitionUoWFactory,
	interlock services.CompletionInterlock,
) ApplyTransitionCommandHandler {
	return ApplyTransitionCommandHandler{
		uowFactory: uowFactory,
		interlock:  interlock,
		escrowTTL:  DefaultEscrowTTL,
	}
}

// NewApplyTransitionCommandHandlerWithEscrowTTL creates a handler with a
// custom fallback escrow deadline for payment webhooks that omit one.
func NewApplyTransitionCommandHandlerWithEscrowTTL(
	uowFactory TransitionUoWFactory,
	interlock services.CompletionInterlock,
	escrowTTL time.Duration,
) ApplyTransitionCommandHandler {
	handler := NewApplyTransitionCommandHandler(uowFactory, interlock)
	if escrowTTL > 0 {
		handler.escrowTTL = escrowTTL
	}
	return handler
}

// Handle processes the transition command and returns the status the order
// actually ended up in. The returned status can differ from the requested
// target in exactly one case: a completion attempt that fails the interlock
// lands in the review status instead.
func (h *ApplyTransitionCommandHandler) Handle(ctx context.Context, cmd ApplyTransitionCommand) (order.Status, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return 0, err
	}

	if err = h.apply(ctx, uow, aggregate, cmd); err != nil {
		return 0, err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return 0, err
	}

	if err = stageStatusNotification(ctx, uow.OutboxRepository(), aggregate); err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return aggregate.Status(), nil
}

//nolint:cyclop // one arm per target status
func (h *ApplyTransitionCommandHandler) apply(
	ctx context.Context,
	uow TransitionUoW,
	aggregate *order.Order,
	cmd ApplyTransitionCommand,
) error {
	params := cmd.Params()

	switch cmd.Target() {
	case order.Paid:
		expiry := params.EscrowExpiresAt
		if expiry.IsZero() {
			expiry = time.Now().UTC().Add(h.escrowTTL)
		}
		return aggregate.MarkPaid(params.PaymentRef, expiry)
	case order.Settled:
		return aggregate.MarkSettled()
	case order.Fulfilling:
		return aggregate.StartFulfillment()
	case order.ForceCallPending:
		return aggregate.RequireForceCall()
	case order.Rerouting:
		return aggregate.StartRerouting()
	case order.Declined:
		return aggregate.Decline(params.Reason)
	case order.Cancelled:
		return aggregate.Cancel()
	case order.Assigned:
		return aggregate.AssignRider(params.RiderID)
	case order.PickupEnRoute:
		return aggregate.StartPickup()
	case order.PickedUp:
		return aggregate.MarkPickedUp(params.PresentedToken)
	case order.DeliveryEnRoute:
		return aggregate.StartDelivery()
	case order.Delivered:
		return h.markDelivered(ctx, uow, aggregate, params.PhotoURI)
	case order.Confirmed:
		return aggregate.Confirm()
	case order.GratitudeSent:
		return aggregate.RecordGratitude()
	case order.Completed:
		return h.complete(ctx, uow, aggregate)
	case order.HeldForReview:
		return aggregate.HoldForReview()
	case order.Disputed:
		return aggregate.RaiseDispute()
	case order.Resolved:
		return aggregate.ResolveDispute()
	default:
		// Initiated, AltFound and Expired are owned by admission, the
		// re-routing engine and the escrow watchdog respectively.
		return errs.NewValueIsInvalidError("target status")
	}
}

// markDelivered records the delivery and creates the evidence record with
// the handover photo in the same transaction.
func (h *ApplyTransitionCommandHandler) markDelivered(
	ctx context.Context,
	uow TransitionUoW,
	aggregate *order.Order,
	photoURI string,
) error {
	if err := aggregate.MarkDelivered(); err != nil {
		return err
	}

	evidence, err := order.NewDeliveryEvidence(kernel.NewUUID(), aggregate.ID(), photoURI)
	if err != nil {
		return err
	}

	return uow.EvidenceRepository().Add(ctx, evidence)
}

// complete consults the interlock. A passing verdict completes the order; a
// failing one routes it to manual review instead of refusing the request.
func (h *ApplyTransitionCommandHandler) complete(
	ctx context.Context,
	uow TransitionUoW,
	aggregate *order.Order,
) error {
	evidence, err := uow.EvidenceRepository().GetByOrderID(ctx, aggregate.ID())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return err
	}

	verdict, err := h.interlock.Evaluate(aggregate, evidence)
	if err != nil {
		return err
	}

	if verdict.Passed {
		return aggregate.Complete()
	}
	return aggregate.HoldForReview()
}
