package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"giftflow/cmd"
	httpadapter "giftflow/internal/adapters/in/http"
	"giftflow/internal/adapters/out/postgres/evidencerepo"
	"giftflow/internal/adapters/out/postgres/lockrepo"
	"giftflow/internal/adapters/out/postgres/orderrepo"
	"giftflow/internal/adapters/out/postgres/outboxrepo"
	"giftflow/internal/adapters/out/postgres/shoprepo"
	"giftflow/internal/jobs"
	"giftflow/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	config, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	gormDB, err := gorm.Open(gorm_postgres.Open(config.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	if err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&shoprepo.ShopDTO{},
		&lockrepo.InventoryLockDTO{},
		&evidencerepo.DeliveryEvidenceDTO{},
		&outboxrepo.OutboxMessageDTO{},
	); err != nil {
		log.Fatalf("Error migrating database schema: %v", err)
	}

	root, err := cmd.NewCompositionRoot(config, gormDB)
	if err != nil {
		log.Fatalf("Error building composition root: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	m := metrics.New()

	jobManager := jobs.NewJobManager(
		root.CreateEscalateOrdersCommandHandler(),
		root.CreateExpireEscrowCommandHandler(),
		root.InventoryLockRepository(),
		root.OutboxRepository(),
		root.NotificationGateway(),
		m,
		logger,
	)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting background jobs: %v", err)
	}
	defer jobManager.StopAll()

	server := httpadapter.NewServer(
		root.CreateAdmitOrderCommandHandler(),
		root.CreateApplyTransitionCommandHandler(),
		root.CreateRecordFiscalResultCommandHandler(),
		root.CreateRerouteOrderCommandHandler(),
		root.CreateGetOrderStatusQueryHandler(),
		root.CreateRerouter(),
		m,
		config.WebhookSecret,
	)

	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)))
}
