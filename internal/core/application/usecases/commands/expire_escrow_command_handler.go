package commands

import (
	"context"
	"errors"
	"time"

	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"
)

// ExpireEscrowResult reports what one sweep did.
type ExpireEscrowResult struct {
	Expired int
	// Conflicts counts orders skipped because another writer advanced them
	// mid-sweep, typically a settlement webhook racing the deadline.
	Conflicts int
	// Failures counts orders whose expiry failed this tick. They are
	// retried on the next tick; the errors are joined into the sweep's
	// returned error.
	Failures int
}

// ExpireEscrowCommandHandler runs the escrow watchdog: orders still holding
// escrow past their deadline are expired and their charge refunded. The
// version check makes the race against a late settlement webhook safe in
// both directions: whoever writes first wins, the loser is a no-op.
type ExpireEscrowCommandHandler struct {
	uowFactory OrderUoWFactory
	refunds    ports.RefundGateway
}

// NewExpireEscrowCommandHandler creates the escrow watchdog handler.
func NewExpireEscrowCommandHandler(
	uowFactory OrderUoWFactory,
	refunds ports.RefundGateway,
) ExpireEscrowCommandHandler {
	return ExpireEscrowCommandHandler{
		uowFactory: uowFactory,
		refunds:    refunds,
	}
}

// Handle runs one sweep. Each order is expired in its own transaction, so
// one poisoned order never rolls back the rest of the tick. Refunds are
// requested only after the expiry is committed; the payment processor
// deduplicates by payment reference, so a crash between commit and refund is
// retried safely on the next tick's manual reconciliation, never
// double-refunded.
func (h *ExpireEscrowCommandHandler) Handle(ctx context.Context, cmd ExpireEscrowCommand) (ExpireEscrowResult, error) {
	if err := cmd.Validate(); err != nil {
		return ExpireEscrowResult{}, err
	}

	scanRepo := h.uowFactory.Create().OrderRepository()

	aggregates, err := scanRepo.GetAllEscrowExpired(ctx, time.Now().UTC())
	if err != nil {
		return ExpireEscrowResult{}, err
	}

	var result ExpireEscrowResult
	var sweepErr error
	var toRefund []*order.Order

	for _, aggregate := range aggregates {
		if expErr := aggregate.ExpireEscrow(); expErr != nil {
			if errors.Is(expErr, errs.ErrInvalidTransition) {
				continue
			}
			result.Failures++
			sweepErr = errors.Join(sweepErr, expErr)
			continue
		}

		if commitErr := h.commitExpiry(ctx, aggregate); commitErr != nil {
			if errors.Is(commitErr, errs.ErrVersionConflict) {
				result.Conflicts++
				continue
			}
			result.Failures++
			sweepErr = errors.Join(sweepErr, commitErr)
			continue
		}

		result.Expired++
		toRefund = append(toRefund, aggregate)
	}

	return result, errors.Join(sweepErr, h.refund(ctx, toRefund))
}

// commitExpiry persists one expired order and its outbox notification in a
// dedicated transaction.
func (h *ExpireEscrowCommandHandler) commitExpiry(ctx context.Context, aggregate *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return err
	}
	if err := stageStatusNotification(ctx, uow.OutboxRepository(), aggregate); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h *ExpireEscrowCommandHandler) refund(ctx context.Context, aggregates []*order.Order) error {
	var errJoin error
	for _, aggregate := range aggregates {
		if err := h.refunds.Refund(ctx, aggregate.ID(), aggregate.PaymentRef()); err != nil {
			errJoin = errors.Join(errJoin, err)
		}
	}
	return errJoin
}
