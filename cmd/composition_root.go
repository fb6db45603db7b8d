package cmd

import (
	"giftflow/internal/adapters/out/gateway"
	"giftflow/internal/adapters/out/postgres"
	"giftflow/internal/core/application/usecases/commands"
	"giftflow/internal/core/application/usecases/queries"
	"giftflow/internal/core/domain/services"
	"giftflow/internal/core/ports"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters, domain services and use case handlers.
// Gateways are constructed once; unit of work instances are created per
// operation through the factory.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	refundGateway       ports.RefundGateway
	voiceCallGateway    ports.VoiceCallGateway
	notificationGateway ports.NotificationGateway
}

// NewCompositionRoot builds the object graph. Gateway construction fails
// only on configuration errors, so the error surfaces at startup.
func NewCompositionRoot(config Config, gormDB *gorm.DB) (CompositionRoot, error) {
	refunds, err := gateway.NewHTTPRefundGateway(config.RefundGatewayURL)
	if err != nil {
		return CompositionRoot{}, err
	}

	voiceCalls, err := gateway.NewHTTPVoiceCallGateway(config.VoiceCallGatewayURL)
	if err != nil {
		return CompositionRoot{}, err
	}

	notifications, err := gateway.NewHTTPNotificationGateway(config.NotificationGatewayURL)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		config:              config,
		gormDB:              gormDB,
		uowFactory:          *postgres.NewGormUnitOfWorkFactory(gormDB),
		refundGateway:       refunds,
		voiceCallGateway:    voiceCalls,
		notificationGateway: notifications,
	}, nil
}

func (c *CompositionRoot) CreateAdmitOrderCommandHandler() commands.AdmitOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdmitOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateApplyTransitionCommandHandler() commands.ApplyTransitionCommandHandler {
	var f commands.TransitionUoWFactory = FuncTransitionUoWFactory(func() commands.TransitionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewApplyTransitionCommandHandlerWithEscrowTTL(
		f, services.NewCompletionInterlock(), c.config.EscrowTTL)
}

func (c *CompositionRoot) CreateRecordFiscalResultCommandHandler() commands.RecordFiscalResultCommandHandler {
	var f commands.TransitionUoWFactory = FuncTransitionUoWFactory(func() commands.TransitionUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordFiscalResultCommandHandler(f)
}

func (c *CompositionRoot) CreateRerouteOrderCommandHandler() commands.RerouteOrderCommandHandler {
	var f commands.RerouteUoWFactory = FuncRerouteUoWFactory(func() commands.RerouteUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRerouteOrderCommandHandler(f, c.CreateRerouter(), c.refundGateway)
}

func (c *CompositionRoot) CreateRerouter() services.Rerouter {
	return services.NewRerouterWithRadius(c.config.SearchRadiusKm)
}

func (c *CompositionRoot) CreateEscalateOrdersCommandHandler() commands.EscalateOrdersCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	// The watchdog drives orders it moved to rerouting, and ones a crashed
	// decline request left behind, through the re-routing engine.
	reroutes := c.CreateRerouteOrderCommandHandler()
	return commands.NewEscalateOrdersCommandHandlerWithThresholds(
		f, c.voiceCallGateway, &reroutes, c.config.ForceCallAfter, c.config.RerouteAfter)
}

func (c *CompositionRoot) CreateExpireEscrowCommandHandler() commands.ExpireEscrowCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewExpireEscrowCommandHandler(f, c.refundGateway)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.gormDB)
}

// InventoryLockRepository returns a repository outside any transaction, for
// the lock janitor job.
func (c *CompositionRoot) InventoryLockRepository() ports.InventoryLockRepository {
	return c.uowFactory.Create().InventoryLockRepository()
}

// OutboxRepository returns a repository outside any transaction, for the
// outbox relay job.
func (c *CompositionRoot) OutboxRepository() ports.OutboxRepository {
	return c.uowFactory.Create().OutboxRepository()
}

// NotificationGateway exposes the notification client for the outbox relay.
func (c *CompositionRoot) NotificationGateway() ports.NotificationGateway {
	return c.notificationGateway
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncTransitionUoWFactory func() commands.TransitionUoW

func (f FuncTransitionUoWFactory) Create() commands.TransitionUoW {
	return f()
}

type FuncRerouteUoWFactory func() commands.RerouteUoW

func (f FuncRerouteUoWFactory) Create() commands.RerouteUoW {
	return f()
}
