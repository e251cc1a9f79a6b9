package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"productsapi/internal/config"
	"productsapi/internal/docs"
	"productsapi/internal/handlers"
	"productsapi/internal/middleware"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const healthCheckTimeout = 2 * time.Second

// Dependencies are the collaborators the HTTP server is assembled from.
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Products *handlers.ProductHandler
	Registry *prometheus.Registry
	// HealthCheck reports storage reachability; nil means always healthy.
	HealthCheck func(ctx context.Context) error
	// AccessLog receives the request log lines; defaults to stdout.
	AccessLog io.Writer
}

// New builds the fiber app: global middleware, /health, /metrics, /docs and
// the product routes under /api.
func New(deps Dependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	accessLog := deps.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	app := fiber.New(fiber.Config{
		AppName:               "products-api",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	// --- Middleware ---
	app.Use(fiberrecover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		Output: accessLog,
	}))
	app.Use(middleware.CORS(deps.Config.Frontend.URL))
	app.Use(middleware.NewMetrics(deps.Registry).Handler())

	// --- Operational endpoints ---
	app.Get("/health", healthHandler(deps.HealthCheck))
	app.Get("/metrics", middleware.MetricsEndpoint(deps.Registry))
	docs.RegisterRoutes(app)

	// --- API Routes ---
	api := app.Group("/api")
	deps.Products.RegisterRoutes(api)

	return app
}

func healthHandler(check func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, database, code := "healthy", "up", fiber.StatusOK
		if check != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
			defer cancel()
			if err := check(ctx); err != nil {
				status, database, code = "unhealthy", "down", fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	}
}

// errorHandler answers every error that escaped the handlers, including
// unknown routes and recovered panics, with a JSON body.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled request error",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.Any("error", err),
			)
		}
		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
