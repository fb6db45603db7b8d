package commands

import (
	"errors"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/pkg/guard"
)

var (
	ErrRecordFiscalResultCommandIsNotConstructed = errors.New(
		"RecordFiscalResultCommand must be created via NewRecordFiscalResultCommand constructor",
	)
	ErrFiscalCodeIsRequired = errors.New("fiscal code is required")
)

// RecordFiscalResultCommand represents the fiscalization provider's receipt
// result for one order. The code is stored verbatim; interpretation is the
// completion interlock's job.
type RecordFiscalResultCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	fiscalCode string

	guard guard.ConstructorGuard
}

// NewRecordFiscalResultCommand creates a command to record a fiscal result.
func NewRecordFiscalResultCommand(orderID kernel.UUID, fiscalCode string) (RecordFiscalResultCommand, error) {
	cmd := RecordFiscalResultCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setFiscalCode(fiscalCode),
	); err != nil {
		return RecordFiscalResultCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordFiscalResultCommand) Validate() error {
	return c.guard.Validate(ErrRecordFiscalResultCommandIsNotConstructed)
}

// OrderID returns the order the receipt belongs to.
func (c RecordFiscalResultCommand) OrderID() kernel.UUID {
	return c.orderID
}

// FiscalCode returns the provider's result code.
func (c RecordFiscalResultCommand) FiscalCode() string {
	return c.fiscalCode
}

func (c *RecordFiscalResultCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RecordFiscalResultCommand) setFiscalCode(code string) error {
	if code == "" {
		return ErrFiscalCodeIsRequired
	}

	c.fiscalCode = code
	return nil
}
