package commands

import (
	"context"
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"
)

// Escalation thresholds, measured from when the order entered its current
// status. An order sits in fulfilling for ForceCallAfter before the reminder
// call fires, then in the call-pending status for RerouteAfter-ForceCallAfter
// before re-routing starts, which keeps the total quiet time at RerouteAfter.
const (
	DefaultForceCallAfter = 5 * time.Minute
	DefaultRerouteAfter   = 10 * time.Minute
)

// strandedRerouteGrace keeps the sweep off orders whose re-route decision is
// likely still running in the decline request that produced them.
const strandedRerouteGrace = time.Minute

// EscalationResult reports what one sweep did.
type EscalationResult struct {
	ForceCallsPlaced int
	ReroutesStarted  int
	// ReroutesResumed counts parked re-route decisions a previous tick or a
	// crashed decline call left behind, driven to an outcome this tick.
	ReroutesResumed int
	// Conflicts counts orders skipped because another writer advanced them
	// mid-sweep. They are picked up again on the next tick.
	Conflicts int
	// Failures counts orders whose escalation or re-route handoff failed
	// this tick. The failed orders are retried on the next tick; the errors
	// are joined into the sweep's returned error.
	Failures int
}

// RerouteDispatcher hands one order to the re-routing engine. Satisfied by
// *RerouteOrderCommandHandler.
type RerouteDispatcher interface {
	Handle(ctx context.Context, cmd RerouteOrderCommand) (RerouteResult, error)
}

// EscalateOrdersCommandHandler runs the unresponsive-shop watchdog: it scans
// active fulfillments and escalates the ones whose shop has gone quiet past
// the thresholds. Orders that cross the second threshold are handed to the
// re-routing engine in the same sweep, and orders a previous sweep or a
// crashed decline request left awaiting a re-route decision are resumed.
type EscalateOrdersCommandHandler struct {
	uowFactory     OrderUoWFactory
	voiceCalls     ports.VoiceCallGateway
	reroutes       RerouteDispatcher
	forceCallAfter time.Duration
	rerouteAfter   time.Duration
}

// NewEscalateOrdersCommandHandler creates the escalation handler with the
// default thresholds.
func NewEscalateOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	voiceCalls ports.VoiceCallGateway,
	reroutes RerouteDispatcher,
) EscalateOrdersCommandHandler {
	return EscalateOrdersCommandHandler{
		uowFactory:     uowFactory,
		voiceCalls:     voiceCalls,
		reroutes:       reroutes,
		forceCallAfter: DefaultForceCallAfter,
		rerouteAfter:   DefaultRerouteAfter,
	}
}

// NewEscalateOrdersCommandHandlerWithThresholds creates the escalation
// handler with custom quiet-time thresholds. Non-positive values fall back
// to the defaults.
func NewEscalateOrdersCommandHandlerWithThresholds(
	uowFactory OrderUoWFactory,
	voiceCalls ports.VoiceCallGateway,
	reroutes RerouteDispatcher,
	forceCallAfter time.Duration,
	rerouteAfter time.Duration,
) EscalateOrdersCommandHandler {
	handler := NewEscalateOrdersCommandHandler(uowFactory, voiceCalls, reroutes)
	if forceCallAfter > 0 {
		handler.forceCallAfter = forceCallAfter
	}
	if rerouteAfter > 0 {
		handler.rerouteAfter = rerouteAfter
	}
	return handler
}

// Handle runs one sweep. Each order is escalated in its own transaction, so
// one poisoned order never rolls back the rest of the tick. Orders advanced
// by another writer mid-sweep are skipped, not failed: the write that beat
// us already moved them forward. Reminder calls and re-route handoffs run
// only after the corresponding status change is committed.
func (h *EscalateOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd EscalateOrdersCommand,
) (EscalationResult, error) {
	if err := cmd.Validate(); err != nil {
		return EscalationResult{}, err
	}

	scanRepo := h.uowFactory.Create().OrderRepository()

	aggregates, err := scanRepo.GetAllFulfillmentActive(ctx)
	if err != nil {
		return EscalationResult{}, err
	}

	stranded, err := scanRepo.GetAllAwaitingReroute(ctx)
	if err != nil {
		return EscalationResult{}, err
	}

	var result EscalationResult
	var sweepErr error
	var pendingCalls []*order.Order
	var pendingReroutes []kernel.UUID
	now := time.Now().UTC()

	for _, aggregate := range aggregates {
		escalated, escErr := h.escalate(aggregate, now)
		if escErr != nil {
			result.Failures++
			sweepErr = errors.Join(sweepErr, escErr)
			continue
		}
		if !escalated {
			continue
		}

		if commitErr := h.commitEscalation(ctx, aggregate); commitErr != nil {
			if errors.Is(commitErr, errs.ErrVersionConflict) {
				result.Conflicts++
				continue
			}
			result.Failures++
			sweepErr = errors.Join(sweepErr, commitErr)
			continue
		}

		switch aggregate.Status() {
		case order.ForceCallPending:
			result.ForceCallsPlaced++
			pendingCalls = append(pendingCalls, aggregate)
		case order.Rerouting:
			result.ReroutesStarted++
			pendingReroutes = append(pendingReroutes, aggregate.ID())
		}
	}

	for _, aggregate := range stranded {
		if now.Sub(aggregate.StatusChangedAt()) < strandedRerouteGrace {
			continue
		}
		result.ReroutesResumed++
		pendingReroutes = append(pendingReroutes, aggregate.ID())
	}

	sweepErr = errors.Join(sweepErr, h.placeCalls(ctx, pendingCalls))
	sweepErr = errors.Join(sweepErr, h.dispatchReroutes(ctx, pendingReroutes, &result))

	return result, sweepErr
}

// commitEscalation persists one escalated order and its outbox notification
// in a dedicated transaction.
func (h *EscalateOrdersCommandHandler) commitEscalation(ctx context.Context, aggregate *order.Order) error {
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

// escalate advances one aggregate if its quiet time crossed a threshold.
// Returns whether the aggregate changed.
func (h *EscalateOrdersCommandHandler) escalate(aggregate *order.Order, now time.Time) (bool, error) {
	quietFor := now.Sub(aggregate.StatusChangedAt())

	switch aggregate.Status() {
	case order.Fulfilling:
		if quietFor < h.forceCallAfter {
			return false, nil
		}
		return true, aggregate.RequireForceCall()
	case order.ForceCallPending:
		if quietFor < h.rerouteAfter-h.forceCallAfter {
			return false, nil
		}
		return true, aggregate.StartRerouting()
	default:
		return false, nil
	}
}

func (h *EscalateOrdersCommandHandler) placeCalls(ctx context.Context, aggregates []*order.Order) error {
	var errJoin error
	for _, aggregate := range aggregates {
		if err := h.voiceCalls.PlaceCall(ctx, aggregate.ShopID(), aggregate.ID()); err != nil {
			errJoin = errors.Join(errJoin, err)
		}
	}
	return errJoin
}

// dispatchReroutes hands each order to the re-routing engine, which either
// reassigns it or cancels and refunds it. A failed handoff leaves the order
// where it is; the stranded scan picks it up again on the next tick.
func (h *EscalateOrdersCommandHandler) dispatchReroutes(
	ctx context.Context,
	orderIDs []kernel.UUID,
	result *EscalationResult,
) error {
	var errJoin error
	for _, orderID := range orderIDs {
		rerouteCmd, err := NewRerouteOrderCommand(orderID)
		if err != nil {
			result.Failures++
			errJoin = errors.Join(errJoin, err)
			continue
		}
		if _, err := h.reroutes.Handle(ctx, rerouteCmd); err != nil {
			result.Failures++
			errJoin = errors.Join(errJoin, err)
		}
	}
	return errJoin
}
