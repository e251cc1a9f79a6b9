package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"productsapi/internal/config"
	"productsapi/internal/database"
	"productsapi/internal/handlers"
	"productsapi/internal/logging"
	"productsapi/internal/repositories"
	"productsapi/internal/server"
	"productsapi/internal/services"
	"productsapi/internal/validation"
	"productsapi/pkg/rabbitmq"
)

// application owns the fiber app and every resource that must be released
// on shutdown.
type application struct {
	app     *fiber.App
	logger  *slog.Logger
	closers []func() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	srv, err := newApplication(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("error while releasing resources", slog.Any("error", err))
		}
	}()

	// --- Start HTTP Server ---
	logger.Info("starting server", slog.String("addr", cfg.App.Addr()), slog.String("driver", cfg.Database.Driver))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")
	if err := srv.app.ShutdownWithTimeout(cfg.App.ShutdownTimeout); err != nil {
		logger.Error("error during fiber shutdown", slog.Any("error", err))
	}
	logger.Info("server gracefully stopped")
	return nil
}

// newApplication wires storage, the optional event publisher, the service
// layer and the HTTP server from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	a := &application{logger: logger}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// --- Initialize Repositories ---
	productRepo, healthCheck, err := a.openStorage(ctx, cfg.Database, registry)
	if err != nil {
		a.Close()
		return nil, err
	}

	// --- Initialize RabbitMQ Client ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.closers = append(a.closers, mqClient.Close)
		publisher = mqClient
	} else {
		logger.Info("RABBITMQ_URL not set, product events are disabled")
	}

	validator, err := validation.New()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize validator: %w", err)
	}

	// --- Initialize Services ---
	productService := services.NewProductService(productRepo, publisher, logger)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService, validator, logger)

	// --- Initialize Fiber App ---
	a.app = server.New(server.Dependencies{
		Config:      cfg,
		Logger:      logger,
		Products:    productHandler,
		Registry:    registry,
		HealthCheck: healthCheck,
	})
	return a, nil
}

// openStorage returns the product repository for the configured driver and,
// for SQL drivers, a health check pinging the database.
func (a *application) openStorage(ctx context.Context, cfg config.DatabaseConfig, registry *prometheus.Registry) (repositories.ProductRepository, func(context.Context) error, error) {
	if cfg.Driver == config.DriverMemory {
		a.logger.Warn("using in-memory storage, products are lost on restart")
		return repositories.NewMemoryProductRepository(), nil, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })

	if err := database.Migrate(ctx, db, cfg.Driver); err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	registry.MustRegister(collectors.NewDBStatsCollector(sqlDB, "products"))

	a.logger.Info("database ready", slog.String("driver", cfg.Driver))
	healthCheck := func(ctx context.Context) error { return database.Ping(ctx, db) }
	return repositories.NewGORMProductRepository(db), healthCheck, nil
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
