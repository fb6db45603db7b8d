package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "giftflow/internal/adapters/out/postgres"
	"giftflow/internal/adapters/out/postgres/evidencerepo"
	"giftflow/internal/adapters/out/postgres/lockrepo"
	"giftflow/internal/adapters/out/postgres/orderrepo"
	"giftflow/internal/adapters/out/postgres/outboxrepo"
	"giftflow/internal/adapters/out/postgres/shoprepo"
	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/core/domain/model/shop"
	"giftflow/internal/core/ports"
	"giftflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides integration testing for the
// GORM-based Unit of Work implementation with a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes the PostgreSQL container and database connection,
// then migrates the schema for all adapters.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&shoprepo.ShopDTO{},
		&lockrepo.InventoryLockDTO{},
		&evidencerepo.DeliveryEvidenceDTO{},
		&outboxrepo.OutboxMessageDTO{},
	)
	suite.Require().NoError(err)

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest ensures clean database state before each test.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, shops, inventory_locks, delivery_evidence, outbox_messages").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up the PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.ShopRepository())
	suite.NotNil(uow1.InventoryLockRepository())
	suite.NotNil(uow1.EvidenceRepository())
	suite.NotNil(uow1.OutboxRepository())
}

// The escrow sweep filters orders on (status, escrow_expires_at); the
// migrated schema must carry the matching composite index.
func (suite *UnitOfWorkIntegrationTestSuite) TestMigration_EscrowSweepIndex() {
	var count int64
	err := suite.db.Raw(
		"SELECT COUNT(*) FROM pg_indexes WHERE tablename = 'orders' AND indexname = 'idx_orders_status_escrow'",
	).Scan(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Commit(ctx)
	suite.Require().Error(err, "Should error when committing without active transaction")

	err = uow.Rollback(ctx)
	suite.Require().Error(err, "Should error when rolling back without active transaction")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderRepository_AddAndGet() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder()

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	err = uow.Commit(ctx)
	suite.Require().NoError(err)

	newUow := suite.factory.Create()
	retrieved, err := newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.True(testOrder.ID().IsEqual(retrieved.ID()))
	suite.Equal(order.Initiated, retrieved.Status())
	suite.Equal(1, retrieved.Version())
	suite.Equal(testOrder.CollectionToken(), retrieved.CollectionToken())
	suite.True(testOrder.Recipient().IsEqual(retrieved.Recipient()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderRepository_GetByIdempotencyKey() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder()
	err := uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	retrieved, err := uow.OrderRepository().GetByIdempotencyKey(ctx, testOrder.IdempotencyKey())
	suite.Require().NoError(err)
	suite.True(testOrder.ID().IsEqual(retrieved.ID()))

	_, err = uow.OrderRepository().GetByIdempotencyKey(ctx, "never-seen")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderRepository_UpdateDetectsStaleVersion() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder()
	err := uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	// Two copies of the same order compete for the paid transition.
	first, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	second, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	escrow := time.Now().UTC().Add(48 * time.Hour)

	err = first.MarkPaid("pi_first", escrow)
	suite.Require().NoError(err)
	err = uow.OrderRepository().Update(ctx, first)
	suite.Require().NoError(err)

	err = second.MarkPaid("pi_second", escrow)
	suite.Require().NoError(err)
	err = uow.OrderRepository().Update(ctx, second)
	suite.Require().ErrorIs(err, errs.ErrVersionConflict)

	retrieved, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal("pi_first", retrieved.PaymentRef())
	suite.Equal(2, retrieved.Version())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderRepository_UpdateClearsEscrowDeadline() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder()
	err := uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)

	err = testOrder.MarkPaid("pi_clear", time.Now().UTC().Add(time.Hour))
	suite.Require().NoError(err)
	err = uow.OrderRepository().Update(ctx, testOrder)
	suite.Require().NoError(err)

	err = testOrder.MarkSettled()
	suite.Require().NoError(err)
	err = uow.OrderRepository().Update(ctx, testOrder)
	suite.Require().NoError(err)

	retrieved, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Settled, retrieved.Status())
	suite.Nil(retrieved.EscrowExpiresAt(), "Settlement should clear the escrow deadline")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderRepository_FulfillmentActiveScan() {
	ctx := context.Background()
	uow := suite.factory.Create()

	fulfilling := suite.createTestOrder()
	suite.advanceToFulfilling(fulfilling)
	err := uow.OrderRepository().Add(ctx, fulfilling)
	suite.Require().NoError(err)

	forceCall := suite.createTestOrder()
	suite.advanceToFulfilling(forceCall)
	suite.Require().NoError(forceCall.RequireForceCall())
	err = uow.OrderRepository().Add(ctx, forceCall)
	suite.Require().NoError(err)

	idle := suite.createTestOrder()
	err = uow.OrderRepository().Add(ctx, idle)
	suite.Require().NoError(err)

	active, err := uow.OrderRepository().GetAllFulfillmentActive(ctx)
	suite.Require().NoError(err)
	suite.Len(active, 2)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOrderRepository_EscrowExpiredScan() {
	ctx := context.Background()
	uow := suite.factory.Create()

	now := time.Now().UTC()

	expired := suite.createTestOrder()
	suite.Require().NoError(expired.MarkPaid("pi_expired", now.Add(-time.Minute)))
	err := uow.OrderRepository().Add(ctx, expired)
	suite.Require().NoError(err)

	live := suite.createTestOrder()
	suite.Require().NoError(live.MarkPaid("pi_live", now.Add(time.Hour)))
	err = uow.OrderRepository().Add(ctx, live)
	suite.Require().NoError(err)

	rows, err := uow.OrderRepository().GetAllEscrowExpired(ctx, now)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.True(expired.ID().IsEqual(rows[0].ID()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestShopRepository_GetAllByCategoryFiltersVetting() {
	ctx := context.Background()
	uow := suite.factory.Create()

	categoryID := kernel.NewUUID()

	vetted := suite.createTestShop(categoryID)
	suite.Require().NoError(vetted.Approve())
	suite.Require().NoError(vetted.Verify())
	suite.Require().NoError(vetted.Activate())
	err := uow.ShopRepository().Add(ctx, vetted)
	suite.Require().NoError(err)

	unvetted := suite.createTestShop(categoryID)
	err = uow.ShopRepository().Add(ctx, unvetted)
	suite.Require().NoError(err)

	otherCategory := suite.createTestShop(kernel.NewUUID())
	suite.Require().NoError(otherCategory.Approve())
	suite.Require().NoError(otherCategory.Verify())
	suite.Require().NoError(otherCategory.Activate())
	err = uow.ShopRepository().Add(ctx, otherCategory)
	suite.Require().NoError(err)

	shops, err := uow.ShopRepository().GetAllByCategory(ctx, categoryID)
	suite.Require().NoError(err)
	suite.Require().Len(shops, 1)
	suite.True(vetted.ID().IsEqual(shops[0].ID()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestInventoryLockRepository_AcquireConflicts() {
	ctx := context.Background()
	uow := suite.factory.Create()

	shopID := kernel.NewUUID()
	productID := kernel.NewUUID()
	holder := kernel.NewUUID()
	challenger := kernel.NewUUID()

	held, err := shop.NewInventoryLock(shopID, productID, holder, shop.DefaultLockTTL)
	suite.Require().NoError(err)
	err = uow.InventoryLockRepository().Acquire(ctx, held)
	suite.Require().NoError(err)

	// A live lock held by another order rejects the challenger.
	rival, err := shop.NewInventoryLock(shopID, productID, challenger, shop.DefaultLockTTL)
	suite.Require().NoError(err)
	err = uow.InventoryLockRepository().Acquire(ctx, rival)
	suite.Require().ErrorIs(err, shop.ErrLockHeldByAnotherOrder)

	// The holder may refresh its own lock.
	refresh, err := shop.NewInventoryLock(shopID, productID, holder, shop.DefaultLockTTL)
	suite.Require().NoError(err)
	err = uow.InventoryLockRepository().Acquire(ctx, refresh)
	suite.Require().NoError(err)

	// An expired lock is replaced in place.
	expired, err := shop.RestoreInventoryLock(shopID, productID, holder, time.Now().UTC().Add(-time.Minute))
	suite.Require().NoError(err)
	err = uow.InventoryLockRepository().Acquire(ctx, expired)
	suite.Require().NoError(err)

	err = uow.InventoryLockRepository().Acquire(ctx, rival)
	suite.Require().NoError(err, "Expired lock should be replaced by the challenger")

	locks, err := uow.InventoryLockRepository().GetAllForProduct(ctx, productID)
	suite.Require().NoError(err)
	suite.Require().Len(locks, 1)
	suite.True(locks[0].IsHeldBy(challenger))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestInventoryLockRepository_ReleaseAndJanitor() {
	ctx := context.Background()
	uow := suite.factory.Create()

	productID := kernel.NewUUID()
	orderID := kernel.NewUUID()
	shopID := kernel.NewUUID()

	lock, err := shop.NewInventoryLock(shopID, productID, orderID, shop.DefaultLockTTL)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.InventoryLockRepository().Acquire(ctx, lock))

	stale, err := shop.RestoreInventoryLock(kernel.NewUUID(), productID, kernel.NewUUID(), time.Now().UTC().Add(-time.Hour))
	suite.Require().NoError(err)
	suite.Require().NoError(uow.InventoryLockRepository().Acquire(ctx, stale))

	removed, err := uow.InventoryLockRepository().DeleteExpired(ctx, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Equal(int64(1), removed)

	err = uow.InventoryLockRepository().Release(ctx, shopID, productID, orderID)
	suite.Require().NoError(err)

	locks, err := uow.InventoryLockRepository().GetAllForProduct(ctx, productID)
	suite.Require().NoError(err)
	suite.Empty(locks)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestEvidenceRepository_RoundTrip() {
	ctx := context.Background()
	uow := suite.factory.Create()

	orderID := kernel.NewUUID()
	evidence, err := order.NewDeliveryEvidence(kernel.NewUUID(), orderID, "s3://evidence/photo.jpg")
	suite.Require().NoError(err)

	err = uow.EvidenceRepository().Add(ctx, evidence)
	suite.Require().NoError(err)

	retrieved, err := uow.EvidenceRepository().GetByOrderID(ctx, orderID)
	suite.Require().NoError(err)
	suite.Equal("s3://evidence/photo.jpg", retrieved.PhotoURI())
	suite.Empty(retrieved.FiscalCode())

	suite.Require().NoError(retrieved.RecordFiscalCode("000"))
	err = uow.EvidenceRepository().Update(ctx, retrieved)
	suite.Require().NoError(err)

	updated, err := uow.EvidenceRepository().GetByOrderID(ctx, orderID)
	suite.Require().NoError(err)
	suite.Equal("000", updated.FiscalCode())

	_, err = uow.EvidenceRepository().GetByOrderID(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOutboxRepository_StageAndPublish() {
	ctx := context.Background()
	uow := suite.factory.Create()

	older := &ports.OutboxMessage{
		ID:         kernel.NewUUID(),
		OrderID:    kernel.NewUUID(),
		Status:     order.Paid.String(),
		Version:    2,
		OccurredAt: time.Now().UTC().Add(-time.Minute),
	}
	newer := &ports.OutboxMessage{
		ID:         kernel.NewUUID(),
		OrderID:    older.OrderID,
		Status:     order.Settled.String(),
		Version:    3,
		OccurredAt: time.Now().UTC(),
	}

	suite.Require().NoError(uow.OutboxRepository().Add(ctx, newer))
	suite.Require().NoError(uow.OutboxRepository().Add(ctx, older))

	pending, err := uow.OutboxRepository().GetUnpublished(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 2)
	suite.True(older.ID.IsEqual(pending[0].ID), "Messages should come back in occurrence order")

	err = uow.OutboxRepository().MarkPublished(ctx, older.ID, time.Now().UTC())
	suite.Require().NoError(err)

	pending, err = uow.OutboxRepository().GetUnpublished(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)
	suite.True(newer.ID.IsEqual(pending[0].ID))

	err = uow.OutboxRepository().MarkPublished(ctx, kernel.NewUUID(), time.Now().UTC())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	uow := suite.factory.Create()

	testOrder := suite.createTestOrder()
	message := &ports.OutboxMessage{
		ID:         kernel.NewUUID(),
		OrderID:    testOrder.ID(),
		Status:     testOrder.Status().String(),
		Version:    testOrder.Version(),
		OccurredAt: time.Now().UTC(),
	}

	err := uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.OrderRepository().Add(ctx, testOrder)
	suite.Require().NoError(err)
	err = uow.OutboxRepository().Add(ctx, message)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err)

	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	pending, err := newUow.OutboxRepository().GetUnpublished(ctx, 10)
	suite.Require().NoError(err)
	suite.Empty(pending, "Staged notification should roll back with the order")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	order1 := suite.createTestOrder()
	order2 := suite.createTestOrder()

	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))

	suite.Require().NoError(uow1.OrderRepository().Add(ctx, order1))
	suite.Require().NoError(uow2.OrderRepository().Add(ctx, order2))

	_, err := uow1.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "UOW1 should see order1")

	_, err = uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "Order1 should persist after commit")

	_, err = newUow.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "Order2 should not persist after rollback")
}

// createTestOrder creates a freshly admitted order for testing purposes.
func (suite *UnitOfWorkIntegrationTestSuite) createTestOrder() *order.Order {
	recipient, err := kernel.NewGeoPoint(-15.3875, 28.3228)
	suite.Require().NoError(err)

	testOrder, err := order.NewOrder(
		kernel.NewUUID(),
		uuid.NewString(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		1,
		"+260971234567",
		recipient,
		"K7XP-R4MN",
		true,
	)
	suite.Require().NoError(err)
	return testOrder
}

// createTestShop creates a shop in the given category, vetting flags unset.
func (suite *UnitOfWorkIntegrationTestSuite) createTestShop(categoryID kernel.UUID) *shop.Shop {
	location, err := kernel.NewGeoPoint(-15.40, 28.30)
	suite.Require().NoError(err)

	testShop, err := shop.NewShop(kernel.NewUUID(), "Petal & Stem", location, categoryID, 80)
	suite.Require().NoError(err)
	return testShop
}

// advanceToFulfilling walks the order through payment and settlement.
func (suite *UnitOfWorkIntegrationTestSuite) advanceToFulfilling(o *order.Order) {
	suite.Require().NoError(o.MarkPaid("pi_test", time.Now().UTC().Add(time.Hour)))
	suite.Require().NoError(o.MarkSettled())
	suite.Require().NoError(o.StartFulfillment())
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
