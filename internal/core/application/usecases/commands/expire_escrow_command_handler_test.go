package commands_test

import (
	"errors"
	"testing"
	"time"

	"giftflow/internal/core/application/usecases/commands"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// escrowFixture wires the mocks the escrow sweep touches on every tick.
type escrowFixture struct {
	repo    *MockOrderRepository
	outbox  *MockOutboxRepository
	uow     *MockUoW
	refunds *MockRefundGateway
	handler commands.ExpireEscrowCommandHandler
}

func newEscrowFixture(t *testing.T, expired []*order.Order) *escrowFixture {
	t.Helper()

	f := &escrowFixture{
		repo:    new(MockOrderRepository),
		outbox:  new(MockOutboxRepository),
		uow:     new(MockUoW),
		refunds: new(MockRefundGateway),
	}

	f.uow.On("Begin", mock.Anything).Return(nil)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	f.uow.On("OrderRepository").Return(f.repo)
	f.uow.On("OutboxRepository").Return(f.outbox)
	f.repo.On("GetAllEscrowExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(expired, nil).Once()

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(f.uow)

	f.handler = commands.NewExpireEscrowCommandHandler(factory, f.refunds)
	return f
}

func TestExpireEscrowCommandHandler_Handle_ExpiresAndRefunds(t *testing.T) {
	ctx := t.Context()
	expired := restoredOrder(t, order.Paid, time.Now().UTC().Add(-72*time.Hour), true)

	f := newEscrowFixture(t, []*order.Order{expired})
	f.repo.On("Update", mock.Anything, expired).Return(nil).Once()
	f.outbox.On("Add", mock.Anything, mock.AnythingOfType("*ports.OutboxMessage")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.refunds.On("Refund", mock.Anything, expired.ID(), "pi_test").Return(nil).Once()

	result, err := f.handler.Handle(ctx, commands.NewExpireEscrowCommand())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, order.Expired, expired.Status())
	assert.Nil(t, expired.EscrowExpiresAt())
	f.refunds.AssertExpectations(t)
}

func TestExpireEscrowCommandHandler_Handle_SettlementWonTheRace(t *testing.T) {
	ctx := t.Context()
	expired := restoredOrder(t, order.Paid, time.Now().UTC().Add(-72*time.Hour), true)

	f := newEscrowFixture(t, []*order.Order{expired})
	f.repo.On("Update", mock.Anything, expired).
		Return(errs.NewVersionConflictError("order id", expired.ID(), expired.Version())).Once()

	result, err := f.handler.Handle(ctx, commands.NewExpireEscrowCommand())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Expired)
	assert.Equal(t, 1, result.Conflicts)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.refunds.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func TestExpireEscrowCommandHandler_Handle_NothingToExpire(t *testing.T) {
	ctx := t.Context()

	f := newEscrowFixture(t, []*order.Order{})

	result, err := f.handler.Handle(ctx, commands.NewExpireEscrowCommand())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Expired)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestExpireEscrowCommandHandler_Handle_ContinuesPastFailedOrder(t *testing.T) {
	ctx := t.Context()
	poisoned := restoredOrder(t, order.Paid, time.Now().UTC().Add(-72*time.Hour), true)
	healthy := restoredOrder(t, order.Paid, time.Now().UTC().Add(-72*time.Hour), true)

	f := newEscrowFixture(t, []*order.Order{poisoned, healthy})
	f.repo.On("Update", mock.Anything, poisoned).Return(errors.New("constraint violation")).Once()
	f.repo.On("Update", mock.Anything, healthy).Return(nil).Once()
	f.outbox.On("Add", mock.Anything, mock.AnythingOfType("*ports.OutboxMessage")).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.refunds.On("Refund", mock.Anything, healthy.ID(), "pi_test").Return(nil).Once()

	result, err := f.handler.Handle(ctx, commands.NewExpireEscrowCommand())

	// The healthy order is still expired and refunded in its own
	// transaction; the failure is reported without rolling the tick back.
	require.Error(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Failures)
	f.refunds.AssertExpectations(t)
	f.refunds.AssertNotCalled(t, "Refund", mock.Anything, poisoned.ID(), mock.Anything)
}
