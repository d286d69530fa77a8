package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.CronSecret == "" {
		slog.Warn("CRON_SECRET is not set; job endpoints will reject every call")
	}

	verifier, err := gateway.New(cfg.PaymentProvider, cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.StripeSecretKey, cfg.GatewayTimeout)
	if err != nil {
		slog.Error("payment gateway misconfigured", "provider", cfg.PaymentProvider, "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	collector := metrics.NewCollector()

	// Repositories
	profiles := repository.NewProfileRepository(database.DB)
	listings := repository.NewListingRepository(database.DB)
	txns := repository.NewTransactionRepository(database.DB)

	// Services
	subscriptionService := services.NewSubscriptionService(profiles, listings)
	boostService := services.NewBoostService(listings)
	listingService := services.NewListingService(profiles, listings, collector)
	paymentService := services.NewPaymentService(txns, profiles, listings, verifier, subscriptionService, boostService, cfg.Currency, collector)
	agentService := services.NewAgentService(profiles)

	reconciler := jobs.NewExpiryReconciler(profiles, listings, collector, cfg.ReconcileWorkers)
	sweeper := jobs.NewPendingSweeper(txns, cfg.PendingTxnTimeout, collector)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, profiles, routes.Handlers{
		Health:  handlers.NewHealthHandler(database.Ping),
		Payment: handlers.NewPaymentHandler(paymentService),
		Listing: handlers.NewListingHandler(listingService, boostService, subscriptionService),
		Job:     handlers.NewJobHandler(reconciler, sweeper),
		Admin:   handlers.NewAdminHandler(agentService, listingService, paymentService),
	}, collector)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "gateway", verifier.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "request_id", c.GetRespHeader(fiber.HeaderXRequestID), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
