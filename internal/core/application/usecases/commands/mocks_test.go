package commands_test

import (
	"context"
	"time"

	"giftflow/internal/core/application/usecases/commands"
	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/domain/model/shop"
	"giftflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*order.Order, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllFulfillmentActive(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllAwaitingReroute(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllEscrowExpired(ctx context.Context, now time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockShopRepository struct{ mock.Mock }

func (m *MockShopRepository) Add(ctx context.Context, s *shop.Shop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShopRepository) Update(ctx context.Context, s *shop.Shop) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShopRepository) Get(ctx context.Context, id kernel.UUID) (*shop.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.Shop), args.Error(1)
}

func (m *MockShopRepository) GetAllByCategory(ctx context.Context, categoryID kernel.UUID) ([]*shop.Shop, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shop.Shop), args.Error(1)
}

type MockLockRepository struct{ mock.Mock }

func (m *MockLockRepository) Acquire(ctx context.Context, lock *shop.InventoryLock) error {
	args := m.Called(ctx, lock)
	return args.Error(0)
}

func (m *MockLockRepository) GetAllForProduct(
	ctx context.Context,
	productID kernel.UUID,
) ([]*shop.InventoryLock, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shop.InventoryLock), args.Error(1)
}

func (m *MockLockRepository) Release(ctx context.Context, shopID, productID, orderID kernel.UUID) error {
	args := m.Called(ctx, shopID, productID, orderID)
	return args.Error(0)
}

func (m *MockLockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockEvidenceRepository struct{ mock.Mock }

func (m *MockEvidenceRepository) Add(ctx context.Context, evidence *order.DeliveryEvidence) error {
	args := m.Called(ctx, evidence)
	return args.Error(0)
}

func (m *MockEvidenceRepository) Update(ctx context.Context, evidence *order.DeliveryEvidence) error {
	args := m.Called(ctx, evidence)
	return args.Error(0)
}

func (m *MockEvidenceRepository) GetByOrderID(
	ctx context.Context,
	orderID kernel.UUID,
) (*order.DeliveryEvidence, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.DeliveryEvidence), args.Error(1)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, message *ports.OutboxMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*ports.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ports.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id kernel.UUID, publishedAt time.Time) error {
	args := m.Called(ctx, id, publishedAt)
	return args.Error(0)
}

// MockUoW satisfies every narrowed unit of work interface in this package.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) ShopRepository() ports.ShopRepository {
	args := m.Called()
	return args.Get(0).(ports.ShopRepository)
}

func (m *MockUoW) InventoryLockRepository() ports.InventoryLockRepository {
	args := m.Called()
	return args.Get(0).(ports.InventoryLockRepository)
}

func (m *MockUoW) EvidenceRepository() ports.EvidenceRepository {
	args := m.Called()
	return args.Get(0).(ports.EvidenceRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockTransitionUoWFactory struct{ mock.Mock }

func (m *MockTransitionUoWFactory) Create() commands.TransitionUoW {
	args := m.Called()
	return args.Get(0).(commands.TransitionUoW)
}

type MockRerouteUoWFactory struct{ mock.Mock }

func (m *MockRerouteUoWFactory) Create() commands.RerouteUoW {
	args := m.Called()
	return args.Get(0).(commands.RerouteUoW)
}

type MockRerouteDispatcher struct{ mock.Mock }

func (m *MockRerouteDispatcher) Handle(
	ctx context.Context,
	cmd commands.RerouteOrderCommand,
) (commands.RerouteResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.RerouteResult), args.Error(1)
}

type MockRefundGateway struct{ mock.Mock }

func (m *MockRefundGateway) Refund(ctx context.Context, orderID kernel.UUID, paymentRef string) error {
	args := m.Called(ctx, orderID, paymentRef)
	return args.Error(0)
}

type MockVoiceCallGateway struct{ mock.Mock }

func (m *MockVoiceCallGateway) PlaceCall(ctx context.Context, shopID, orderID kernel.UUID) error {
	args := m.Called(ctx, shopID, orderID)
	return args.Error(0)
}
