package order

import (
	"errors"
	"time"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/pkg/errs"
	"giftflow/internal/pkg/guard"
)

// ErrEvidenceIsNotConstructed is returned when using an improperly initialized
// DeliveryEvidence.
var ErrEvidenceIsNotConstructed = errors.New("DeliveryEvidence must be created via NewDeliveryEvidence constructor")

// DeliveryEvidence is the proof-of-delivery record attached to an order: the
// handover photo captured by the rider and the fiscal receipt code reported
// by the fiscalization provider. The completion interlock inspects it before
// an order may reach its terminal status.
type DeliveryEvidence struct {
	id         kernel.UUID
	orderID    kernel.UUID
	photoURI   string
	fiscalCode string
	capturedAt time.Time
	guard      guard.ConstructorGuard
}

// NewDeliveryEvidence creates an evidence record for the given order. The
// photo URI is required at creation; the fiscal code arrives later from the
// fiscalization webhook and may be empty here.
func NewDeliveryEvidence(id, orderID kernel.UUID, photoURI string) (*DeliveryEvidence, error) {
	if photoURI == "" {
		return nil, errs.NewValueIsRequiredError("photo uri")
	}
	return RestoreDeliveryEvidence(id, orderID, photoURI, "", time.Now().UTC())
}

// RestoreDeliveryEvidence reconstructs a DeliveryEvidence from persistence.
func RestoreDeliveryEvidence(
	id, orderID kernel.UUID,
	photoURI string,
	fiscalCode string,
	capturedAt time.Time,
) (*DeliveryEvidence, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	return &DeliveryEvidence{
		id:         id,
		orderID:    orderID,
		photoURI:   photoURI,
		fiscalCode: fiscalCode,
		capturedAt: capturedAt,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the DeliveryEvidence was properly constructed.
func (e *DeliveryEvidence) Validate() error {
	if e == nil {
		return ErrEvidenceIsNotConstructed
	}
	return e.guard.Validate(ErrEvidenceIsNotConstructed)
}

// ID returns the evidence record's unique identifier.
func (e *DeliveryEvidence) ID() kernel.UUID {
	return e.id
}

// OrderID returns the order this evidence belongs to.
func (e *DeliveryEvidence) OrderID() kernel.UUID {
	return e.orderID
}

// PhotoURI returns the storage location of the handover photo.
func (e *DeliveryEvidence) PhotoURI() string {
	return e.photoURI
}

// FiscalCode returns the fiscal receipt result code, or empty if the
// fiscalization provider has not reported yet.
func (e *DeliveryEvidence) FiscalCode() string {
	return e.fiscalCode
}

// CapturedAt returns when the handover photo was captured.
func (e *DeliveryEvidence) CapturedAt() time.Time {
	return e.capturedAt
}

// RecordFiscalCode attaches the fiscalization provider's result code.
func (e *DeliveryEvidence) RecordFiscalCode(code string) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if code == "" {
		return errs.NewValueIsRequiredError("fiscal code")
	}
	e.fiscalCode = code
	return nil
}
