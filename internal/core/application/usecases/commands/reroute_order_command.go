package commands

import (
	"errors"

	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/pkg/guard"
)

var ErrRerouteOrderCommandIsNotConstructed = errors.New(
	"RerouteOrderCommand must be created via NewRerouteOrderCommand constructor",
)

// RerouteOrderCommand requests an alternative shop for one order whose
// assignment declined or went unresponsive.
type RerouteOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRerouteOrderCommand creates a command to re-route the given order.
func NewRerouteOrderCommand(orderID kernel.UUID) (RerouteOrderCommand, error) {
	cmd := RerouteOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return RerouteOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RerouteOrderCommand) Validate() error {
	return c.guard.Validate(ErrRerouteOrderCommandIsNotConstructed)
}

// OrderID returns the order to re-route.
func (c RerouteOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *RerouteOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
