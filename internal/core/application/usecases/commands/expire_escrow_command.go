package commands

import (
	"errors"

	"giftflow/internal/pkg/guard"
)

var ErrExpireEscrowCommandIsNotConstructed = errors.New(
	"ExpireEscrowCommand must be created via NewExpireEscrowCommand constructor",
)

// ExpireEscrowCommand triggers one sweep over orders whose escrowed funds
// sat past the settlement deadline.
type ExpireEscrowCommand struct {
	guard guard.ConstructorGuard
}

// NewExpireEscrowCommand creates a command to run one escrow expiry sweep.
func NewExpireEscrowCommand() ExpireEscrowCommand {
	return ExpireEscrowCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c ExpireEscrowCommand) Validate() error {
	return c.guard.Validate(ErrExpireEscrowCommandIsNotConstructed)
}
