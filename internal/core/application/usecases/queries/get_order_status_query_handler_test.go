package queries_test

import (
	"context"
	"testing"
	"time"

	"giftflow/internal/adapters/out/postgres/orderrepo"
	"giftflow/internal/core/application/usecases/queries"
	"giftflow/internal/core/domain/model/kernel"
	"giftflow/internal/core/domain/model/order"
	"giftflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GetOrderStatusQueryHandlerTestSuite exercises the status lookup against a
// real PostgreSQL database populated through the write-side DTO.
type GetOrderStatusQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetOrderStatusQueryHandler
}

func (suite *GetOrderStatusQueryHandlerTestSuite) SetupSuite() {
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

	err = db.AutoMigrate(&orderrepo.OrderDTO{})
	suite.Require().NoError(err)

	suite.handler = queries.NewGetOrderStatusQueryHandler(db)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders").Error
	suite.Require().NoError(err)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_InitiatedOrder() {
	ctx := context.Background()
	orderID := suite.insertOrder(int(order.Initiated), nil)

	query, err := queries.NewGetOrderStatusQuery(orderID)
	suite.Require().NoError(err)

	response, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.True(orderID.IsEqual(response.ID))
	suite.Equal("Initiated", response.Status)
	suite.Equal(order.Initiated.PublicMessage(), response.Message)
	suite.False(response.RiderAssigned)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_AssignedOrderShowsRider() {
	ctx := context.Background()
	riderID := uuid.New()
	orderID := suite.insertOrder(int(order.Assigned), &riderID)

	query, err := queries.NewGetOrderStatusQuery(orderID)
	suite.Require().NoError(err)

	response, err := suite.handler.Handle(ctx, query)
	suite.Require().NoError(err)

	suite.Equal("Assigned", response.Status)
	suite.True(response.RiderAssigned)
}

func (suite *GetOrderStatusQueryHandlerTestSuite) TestHandle_UnknownOrder() {
	ctx := context.Background()

	query, err := queries.NewGetOrderStatusQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = suite.handler.Handle(ctx, query)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

// insertOrder stores a minimal row through the write-side DTO and returns
// its id.
func (suite *GetOrderStatusQueryHandlerTestSuite) insertOrder(status int, riderID *uuid.UUID) kernel.UUID {
	id := kernel.NewUUID()

	dto := orderrepo.OrderDTO{
		ID:              id.Bytes(),
		IdempotencyKey:  uuid.NewString(),
		Status:          status,
		Version:         1,
		StatusChangedAt: time.Now().UTC(),
		ShopID:          uuid.New(),
		OriginalShopID:  uuid.New(),
		RiderID:         riderID,
		ProductID:       uuid.New(),
		CategoryID:      uuid.New(),
		Quantity:        1,
		ReceiverContact: "+260971234567",
		Recipient: orderrepo.GeoPointDTO{
			Latitude:  -15.3875,
			Longitude: 28.3228,
		},
		CollectionToken: "K7XP-R4MN",
	}

	err := suite.db.Create(&dto).Error
	suite.Require().NoError(err)
	return id
}

func TestGetOrderStatusQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetOrderStatusQueryHandlerTestSuite))
}
