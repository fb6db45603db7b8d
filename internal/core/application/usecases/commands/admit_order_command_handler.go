package commands

import (
	"context"
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"
	"giftflow/internal/pkg/token"
)

// AdmitOrderResult reports the outcome of an admission attempt. When the
// idempotency key was seen before, AlreadyAdmitted is true and the fields
// describe the original order.
type AdmitOrderResult struct {
	OrderID         kernel.UUID
	CollectionToken string
	Status          order.Status
	AlreadyAdmitted bool
}

// AdmitOrderCommandHandler handles the business logic for order admission:
// duplicate collapse by idempotency key, collection token minting and the
// initial persistence of the aggregate.
type AdmitOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewAdmitOrderCommandHandler creates a handler for order admission.
func NewAdmitOrderCommandHandler(uowFactory OrderUoWFactory) AdmitOrderCommandHandler {
	return AdmitOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the admission command. A repeated idempotency key returns
// the originally admitted order without creating a new one.
func (h *AdmitOrderCommandHandler) Handle(ctx context.Context, cmd AdmitOrderCommand) (AdmitOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return AdmitOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AdmitOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	existing, err := orderRepo.GetByIdempotencyKey(ctx, cmd.IdempotencyKey())
	if err != nil && !errors.Is(err, errs.ErrObjectNotFound) {
		return AdmitOrderResult{}, err
	}
	if existing != nil {
		return AdmitOrderResult{
			OrderID:         existing.ID(),
			CollectionToken: existing.CollectionToken(),
			Status:          existing.Status(),
			AlreadyAdmitted: true,
		}, nil
	}

	collectionToken, err := token.NewCollectionToken()
	if err != nil {
		return AdmitOrderResult{}, err
	}

	aggregate, err := order.NewOrder(
		kernel.NewUUID(),
		cmd.IdempotencyKey(),
		cmd.ShopID(),
		cmd.ProductID(),
		cmd.CategoryID(),
		cmd.Quantity(),
		cmd.ReceiverContact(),
		cmd.Recipient(),
		collectionToken,
		cmd.AutoReroute(),
	)
	if err != nil {
		return AdmitOrderResult{}, err
	}

	if err = orderRepo.Add(ctx, aggregate); err != nil {
		return AdmitOrderResult{}, err
	}

	if err = stageStatusNotification(ctx, uow.OutboxRepository(), aggregate); err != nil {
		return AdmitOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AdmitOrderResult{}, err
	}

	return AdmitOrderResult{
		OrderID:         aggregate.ID(),
		CollectionToken: aggregate.CollectionToken(),
		Status:          aggregate.Status(),
	}, nil
}

// stageStatusNotification writes the order's current status to the outbox
// inside the caller's transaction.
func stageStatusNotification(ctx context.Context, outbox ports.OutboxRepository, aggregate *order.Order) error {
	return outbox.Add(ctx, &ports.OutboxMessage{
		ID:         kernel.NewUUID(),
		OrderID:    aggregate.ID(),
		Status:     aggregate.Status().String(),
		Version:    aggregate.Version(),
		OccurredAt: time.Now().UTC(),
	})
}
