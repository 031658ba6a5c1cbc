package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/motordesk/dealer-api/internal/application/deals"
	"github.com/motordesk/dealer-api/internal/application/invoicing"
	"github.com/motordesk/dealer-api/internal/infrastructure/postgres"
	"github.com/motordesk/dealer-api/internal/infrastructure/storage"
	httpRouter "github.com/motordesk/dealer-api/internal/interfaces/http"
	"github.com/motordesk/dealer-api/pkg/config"
	"github.com/motordesk/dealer-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	dealRepo := postgres.NewDealRepository(pool)
	docRepo := postgres.NewDocumentRepository(pool)
	counterRepo := postgres.NewCounterRepository(pool)
	vehicleRepo := postgres.NewVehicleRepository(pool)
	dealerRepo := postgres.NewDealerRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	serviceRecordRepo := postgres.NewServiceRecordRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	logoSigner := storage.NewURLSigner(cfg.Storage.AssetBaseURL, cfg.Storage.Secret)
	snapshots := invoicing.NewSnapshotBuilder(logoSigner, serviceRecordRepo)

	shareTTL := time.Duration(cfg.Share.TTLMonths) * 30 * 24 * time.Hour

	invoiceUC := invoicing.NewIssueInvoiceUseCase(
		dealRepo, docRepo, counterRepo, vehicleRepo, dealerRepo, customerRepo,
		snapshots, cfg.Share.BaseURL, shareTTL, log,
	)
	receiptUC := invoicing.NewDepositReceiptUseCase(
		txRunner, dealRepo, docRepo, counterRepo, vehicleRepo, dealerRepo, customerRepo,
		snapshots, shareTTL, log,
	)
	documentUC := invoicing.NewDocumentUseCase(docRepo, dealRepo, dealerRepo, logoSigner, log)
	dealUC := deals.NewDealUseCase(dealRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI locally: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Dealer API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		DealUC:     dealUC,
		InvoiceUC:  invoiceUC,
		ReceiptUC:  receiptUC,
		DocumentUC: documentUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
