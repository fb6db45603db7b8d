package services

import (
	"giftflow/internal/core/domain/model/order"
)

// Fiscal receipt result codes the tax authority reports as a clean receipt.
// Any other code, and any missing receipt, keeps the order out of its
// terminal status.
const (
	FiscalCodeRegistered = "000"
	FiscalCodeDuplicate  = "001"
)

// Hold reasons reported by the interlock when completion is refused.
const (
	HoldReasonNoEvidence      = "no delivery evidence on file"
	HoldReasonNoFiscalReceipt = "fiscal receipt not reported"
	HoldReasonBadFiscalCode   = "fiscal receipt code is not clean"
)

// Verdict is the interlock's decision for one completion attempt.
type Verdict struct {
	Passed bool
	// HoldReason is set when Passed is false.
	HoldReason string
}

// CompletionInterlock is a domain service that gates the transition into the
// terminal completed status. An order completes only when a delivery evidence
// record exists and its fiscal receipt code is one of the clean codes;
// anything else routes the order to manual review instead.
type CompletionInterlock struct{}

// NewCompletionInterlock creates a CompletionInterlock.
func NewCompletionInterlock() CompletionInterlock {
	return CompletionInterlock{}
}

// Evaluate inspects the order's evidence and returns the completion verdict.
// A nil evidence means no record exists for the order.
func (i CompletionInterlock) Evaluate(o *order.Order, evidence *order.DeliveryEvidence) (Verdict, error) {
	if err := o.Validate(); err != nil {
		return Verdict{}, err
	}

	if evidence == nil {
		return Verdict{HoldReason: HoldReasonNoEvidence}, nil
	}
	if err := evidence.Validate(); err != nil {
		return Verdict{}, err
	}

	switch evidence.FiscalCode() {
	case "":
		return Verdict{HoldReason: HoldReasonNoFiscalReceipt}, nil
	case FiscalCodeRegistered, FiscalCodeDuplicate:
		return Verdict{Passed: true}, nil
	default:
		return Verdict{HoldReason: HoldReasonBadFiscalCode}, nil
	}
}
