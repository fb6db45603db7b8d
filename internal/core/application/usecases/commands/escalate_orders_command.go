package commands

import (
	"errors"

	"giftflow/internal/pkg/guard"
)

var ErrEscalateOrdersCommandIsNotConstructed = errors.New(
	"EscalateOrdersCommand must be created via NewEscalateOrdersCommand constructor",
)

// EscalateOrdersCommand triggers one escalation sweep over every order in an
// active fulfillment status. The thresholds live on the handler; the sweep
// itself has no parameters.
type EscalateOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewEscalateOrdersCommand creates a command to run one escalation sweep.
func NewEscalateOrdersCommand() EscalateOrdersCommand {
	return EscalateOrdersCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c EscalateOrdersCommand) Validate() error {
	return c.guard.Validate(ErrEscalateOrdersCommandIsNotConstructed)
}
