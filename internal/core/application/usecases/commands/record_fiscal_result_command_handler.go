package commands

import (
	"context"
)

// RecordFiscalResultCommandHandler attaches the fiscalization provider's
// receipt code to the order's delivery evidence.
type RecordFiscalResultCommandHandler struct {
	uowFactory TransitionUoWFactory
}

// NewRecordFiscalResultCommandHandler creates a handler for fiscal result
// recording.
func NewRecordFiscalResultCommandHandler(uowFactory TransitionUoWFactory) RecordFiscalResultCommandHandler {
	return RecordFiscalResultCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle stores the fiscal code on the order's evidence record. A missing
// evidence record is a protocol error: fiscalization only fires after the
// delivery created one.
func (h *RecordFiscalResultCommandHandler) Handle(ctx context.Context, cmd RecordFiscalResultCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	evidenceRepo := uow.EvidenceRepository()

	evidence, err := evidenceRepo.GetByOrderID(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = evidence.RecordFiscalCode(cmd.FiscalCode()); err != nil {
		return err
	}

	if err = evidenceRepo.Update(ctx, evidence); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
