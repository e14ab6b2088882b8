package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LukeA4591/GameTroveAPI/internal/config"
	"github.com/LukeA4591/GameTroveAPI/internal/database"
	"github.com/LukeA4591/GameTroveAPI/internal/handlers"
	"github.com/LukeA4591/GameTroveAPI/internal/logging"
	"github.com/LukeA4591/GameTroveAPI/internal/metrics"
	"github.com/LukeA4591/GameTroveAPI/internal/middleware"
	"github.com/LukeA4591/GameTroveAPI/internal/repositories"
	"github.com/LukeA4591/GameTroveAPI/internal/services"
	"github.com/LukeA4591/GameTroveAPI/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber   *fiber.App
	DB      *gorm.DB
	Metrics *metrics.Metrics
	mq      *rabbitmq.Client
	log     *logrus.Logger
}

// NewApp wires configuration, storage, services and routes into a ready
// Fiber application. RabbitMQ is optional: an empty URL disables events.
func NewApp(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.SeedReferenceData {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := database.SeedReferenceData(ctx, db)
		cancel()
		if err != nil {
			return nil, err
		}
	}

	m := metrics.New()
	opts := []services.Option{services.WithMetrics(m), services.WithLogger(logger)}

	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: services.EventsExchange,
			Queue:    cfg.RabbitMQAuditQueue,
		}, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithEvents(mqClient))
		if cfg.RabbitMQAuditQueue != "" {
			if err := mqClient.ConsumeEvents(rabbitmq.AuditLogger(logger)); err != nil {
				logger.WithError(err).Warn("audit consumer not started")
			}
		}
	} else {
		logger.Info("RABBITMQ_URL not set, event publishing disabled")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	gameRepo := repositories.NewGORMGameRepository(db)
	refRepo := repositories.NewGORMReferenceRepository(db)
	ledgerRepo := repositories.NewGORMLedgerRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL, opts...)
	gameService := services.NewGameService(gameRepo, refRepo, userRepo, authService, cfg.SearchStrictSort, opts...)
	ledgerService := services.NewLedgerService(ledgerRepo, opts...)
	reviewService := services.NewReviewService(reviewRepo, gameRepo, opts...)

	// --- Fiber ---
	app := fiber.New(fiber.Config{
		AppName:      "GameTrove API",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.AuthHeader,
	}))
	app.Use(middleware.RequestLogger(logger))
	app.Use(middleware.Metrics(m))

	auth := middleware.AuthRequired(authService)
	apiV1 := app.Group("/api/v1")
	handlers.NewUserHandler(authService).RegisterRoutes(apiV1, auth)
	handlers.NewGameHandler(gameService).RegisterRoutes(apiV1, auth)
	handlers.NewLedgerHandler(ledgerService).RegisterRoutes(apiV1, auth)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(apiV1, auth)

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"rabbitMQ": "disabled",
		}
		if mqClient != nil {
			status["rabbitMQ"] = "connected"
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	return &App{Fiber: app, DB: db, Metrics: m, mq: mqClient, log: logger}, nil
}

// Close shuts down the server and releases the database and broker.
func (a *App) Close() error {
	var errs []error
	if err := a.Fiber.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
	}
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize application")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.WithField("port", cfg.AppPort).Info("Starting server")
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-quit
	logger.Info("Shutting down server...")
	if err := app.Close(); err != nil {
		logger.WithError(err).Error("Error during shutdown")
	}
	logger.Info("Server gracefully stopped")
}
