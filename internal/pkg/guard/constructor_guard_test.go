package guard_test

import (
	"errors"
	"testing"

	"giftflow/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotConstructed = errors.New("command must be created via its constructor")

type guardedCommand struct {
	orderID string
	guard   guard.ConstructorGuard
}

func newGuardedCommand(orderID string) (guardedCommand, error) {
	if orderID == "" {
		return guardedCommand{}, errors.New("orderID is required")
	}
	return guardedCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c guardedCommand) Validate() error {
	return c.guard.Validate(errNotConstructed)
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed guard passes", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		assert.NoError(t, g.Validate(errNotConstructed))
		assert.NoError(t, g.Validate(nil))
	})

	t.Run("zero value fails with the given error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, errNotConstructed, g.Validate(errNotConstructed))
	})

	t.Run("zero value falls back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, guard.ErrDefaultConstructorGuard, g.Validate(nil))
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	t.Run("constructor output validates", func(t *testing.T) {
		cmd, err := newGuardedCommand("order-1")

		require.NoError(t, err)
		assert.NoError(t, cmd.Validate())
	})

	t.Run("zero value is rejected", func(t *testing.T) {
		var cmd guardedCommand

		assert.Equal(t, errNotConstructed, cmd.Validate())
	})

	t.Run("copies stay constructed", func(t *testing.T) {
		cmd, err := newGuardedCommand("order-1")
		require.NoError(t, err)

		copied := cmd
		assert.NoError(t, copied.Validate())
	})
}
