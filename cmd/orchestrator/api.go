package main

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/web"
)

const shutdownTimeout = 30 * time.Second

type API struct {
	logger       *slog.Logger
	catalog      *catalog.Catalog
	orchestrator web.Orchestrator
	validate     *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	c *catalog.Catalog,
	orchestrator web.Orchestrator,
) *API {
	return &API{
		logger:       logger,
		catalog:      c,
		orchestrator: orchestrator,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.orchestrator, a.catalog, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", handlers.Root)
	app.Post("/", handlers.Orchestrate)
	app.Get("/health", handlers.HealthCheck)
	app.Post("/orchestrate", handlers.Orchestrate)

	f := app.Group("/flows")
	f.Get("/", handlers.ListFlows)
	f.Get("/:name", handlers.GetFlow)

	return app
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (a *API) Start(ctx context.Context, host string, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		a.logger.Info("Shutting down API server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			a.logger.Error("Failed to shutdown API server", "error", err)
		}
	}()

	return app.Listen(net.JoinHostPort(host, strconv.Itoa(port)))
}
