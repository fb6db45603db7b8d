package commands

import (
	"context"
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/domain/model/shop"
	"giftflow/internal/core/domain/services"
	"giftflow/internal/core/ports"
)

// RerouteOutcome classifies what the re-routing engine did with an order.
type RerouteOutcome string

const (
	// OutcomeRerouted means an alternative shop took the order over.
	OutcomeRerouted RerouteOutcome = "rerouted"
	// OutcomeCancelled means no alternative existed, or the sender opted out
	// of automatic re-routing, and the order was cancelled and refunded.
	OutcomeCancelled RerouteOutcome = "cancelled"
)

// RerouteResult reports the outcome of one re-route attempt.
type RerouteResult struct {
	Outcome         RerouteOutcome
	NewShopID       kernel.UUID
	DistanceDeltaKm float64
}

// RerouteOrderCommandHandler finds a replacement shop for a declined or
// unresponsive assignment. It reserves the replacement's stock with an
// inventory lock in the same transaction as the order write, so two
// concurrent re-routes cannot promise the same stock.
type RerouteOrderCommandHandler struct {
	uowFactory RerouteUoWFactory
	rerouter   services.Rerouter
	refunds    ports.RefundGateway
}

// NewRerouteOrderCommandHandler creates the re-routing handler.
func NewRerouteOrderCommandHandler(
	uowFactory RerouteUoWFactory,
	rerouter services.Rerouter,
	refunds ports.RefundGateway,
) RerouteOrderCommandHandler {
	return RerouteOrderCommandHandler{
		uowFactory: uowFactory,
		rerouter:   rerouter,
		refunds:    refunds,
	}
}

// Handle processes one re-route. An order whose sender opted out of
// automatic re-routing is cancelled directly. Otherwise the engine scores
// the eligible shops and hands the order to the best one; with no survivor
// the order is cancelled. Cancellation refunds the charge after commit.
func (h *RerouteOrderCommandHandler) Handle(ctx context.Context, cmd RerouteOrderCommand) (RerouteResult, error) {
	if err := cmd.Validate(); err != nil {
		return RerouteResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RerouteResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return RerouteResult{}, err
	}

	var result RerouteResult
	if aggregate.AutoReroute() {
		result, err = h.reroute(ctx, uow, aggregate)
	} else {
		result, err = h.cancel(aggregate)
	}
	if err != nil {
		return RerouteResult{}, err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return RerouteResult{}, err
	}

	if err = stageStatusNotification(ctx, uow.OutboxRepository(), aggregate); err != nil {
		return RerouteResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RerouteResult{}, err
	}

	if result.Outcome == OutcomeCancelled {
		return result, h.refunds.Refund(ctx, aggregate.ID(), aggregate.PaymentRef())
	}
	return result, nil
}

func (h *RerouteOrderCommandHandler) reroute(
	ctx context.Context,
	uow RerouteUoW,
	aggregate *order.Order,
) (RerouteResult, error) {
	candidates, err := uow.ShopRepository().GetAllByCategory(ctx, aggregate.CategoryID())
	if err != nil {
		return RerouteResult{}, err
	}

	lockRepo := uow.InventoryLockRepository()
	locks, err := lockRepo.GetAllForProduct(ctx, aggregate.ProductID())
	if err != nil {
		return RerouteResult{}, err
	}

	originalShop, err := h.originalShop(ctx, uow, aggregate)
	if err != nil {
		return RerouteResult{}, err
	}

	best, err := h.rerouter.FindAlternative(aggregate, originalShop, candidates, locks, time.Now().UTC())
	if errors.Is(err, services.ErrNoAlternativeShop) {
		return h.cancel(aggregate)
	}
	if err != nil {
		return RerouteResult{}, err
	}

	lock, err := shop.NewInventoryLock(best.Shop.ID(), aggregate.ProductID(), aggregate.ID(), shop.DefaultLockTTL)
	if err != nil {
		return RerouteResult{}, err
	}
	if err = lockRepo.Acquire(ctx, lock); err != nil {
		return RerouteResult{}, err
	}

	if err = aggregate.AcceptAlternative(best.Shop.ID(), best.DistanceDeltaKm); err != nil {
		return RerouteResult{}, err
	}

	return RerouteResult{
		Outcome:         OutcomeRerouted,
		NewShopID:       best.Shop.ID(),
		DistanceDeltaKm: best.DistanceDeltaKm,
	}, nil
}

func (h *RerouteOrderCommandHandler) cancel(aggregate *order.Order) (RerouteResult, error) {
	if err := aggregate.Cancel(); err != nil {
		return RerouteResult{}, err
	}
	return RerouteResult{Outcome: OutcomeCancelled}, nil
}

// originalShop loads the order's original assignment for the distance-delta
// baseline. A missing record degrades the baseline instead of failing the
// re-route.
func (h *RerouteOrderCommandHandler) originalShop(
	ctx context.Context,
	uow RerouteUoW,
	aggregate *order.Order,
) (*shop.Shop, error) {
	original, err := uow.ShopRepository().Get(ctx, aggregate.OriginalShopID())
	if err != nil {
		return nil, nil //nolint:nilerr,nilnil // baseline degrades to zero
	}
	return original, nil
}
