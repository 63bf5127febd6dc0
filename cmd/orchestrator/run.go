package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/orchestrator/pkg/catalog"
	"github.com/dukex/orchestrator/pkg/cmd"
	"github.com/dukex/orchestrator/pkg/dedup"
	"github.com/dukex/orchestrator/pkg/flow"
	"github.com/dukex/orchestrator/pkg/log"
	"github.com/dukex/orchestrator/pkg/otelhelper"
	"github.com/dukex/orchestrator/pkg/router"
	"github.com/dukex/orchestrator/pkg/services"
	"github.com/dukex/orchestrator/pkg/transport"
	"github.com/dukex/orchestrator/pkg/web"
)

const defaultPort = 8080

func catalogFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "catalog-file",
		Usage:   "YAML file overriding step timeouts, targets and parallel groups",
		Sources: cli.EnvVars("CATALOG_FILE"),
	}
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   "info",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}
}

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Start the orchestration API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Address to bind the API server to",
				Value:   "0.0.0.0",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "max-workers",
				Usage:   "Maximum concurrent steps within a parallel group",
				Value:   flow.DefaultMaxWorkers,
				Sources: cli.EnvVars("MAX_WORKERS"),
			},
			&cli.IntFlag{
				Name:    "http-retry-count",
				Usage:   "Retries for step calls failing with a server or network error",
				Value:   0,
				Sources: cli.EnvVars("HTTP_RETRY_COUNT"),
			},
			&cli.StringFlag{
				Name:    "webhook-url",
				Usage:   "URL receiving every execution response",
				Sources: cli.EnvVars("DEFAULT_WEBHOOK_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for duplicate tracking shared between instances (in-memory when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "dedup-ttl",
				Usage:   "How long a request is remembered for duplicate detection",
				Value:   dedup.DefaultTTL,
				Sources: cli.EnvVars("DEDUP_TTL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus for flow lifecycle events (gochannel, kafka; disabled when empty)",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers for the kafka event bus",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			catalogFlag(),
			logLevelFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing orchestrator", "port", command.Int("port"))

			c, err := catalog.Load(command.String("catalog-file"))
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			var tracer trace.Tracer = otelhelper.NoopTracer()

			if command.Bool("otel-enabled") {
				t, shutdown, err := otelhelper.NewTracer(ctx, web.ServiceName)
				if err != nil {
					return fmt.Errorf("failed to initialize tracer: %w", err)
				}

				tracer = t

				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()

					if err := shutdown(shutdownCtx); err != nil {
						logger.Error("Failed to shutdown tracer provider", "error", err)
					}
				}()
			}

			provider := command.String("event-bus")

			eventBus, err := cmd.NewEventBus(provider, command.String("kafka-brokers"), log.WithModule("event_bus"))
			if err != nil {
				return err
			}

			engineOpts := []flow.Option{
				flow.WithMaxWorkers(command.Int("max-workers")),
				flow.WithLogger(log.WithModule("flow_engine")),
				flow.WithTracer(tracer),
			}

			if eventBus != nil {
				defer func() {
					if err := eventBus.Close(); err != nil {
						logger.Error("Failed to close event bus", "error", err)
					}
				}()

				if provider == cmd.EventBusGoChannel {
					if err := cmd.LogEvents(ctx, eventBus, log.WithModule("event_log")); err != nil {
						return fmt.Errorf("failed to subscribe to flow events: %w", err)
					}
				}

				engineOpts = append(engineOpts, flow.WithPublisher(eventBus))
			}

			tracker, err := cmd.NewTracker(ctx, command.String("redis-url"), log.WithModule("dedup"))
			if err != nil {
				return err
			}

			defer func() {
				if err := tracker.Close(); err != nil {
					logger.Error("Failed to close duplicate tracker", "error", err)
				}
			}()

			stepTransport := transport.NewHTTPTransport(log.WithModule("http_transport"),
				transport.WithRetry(command.Int("http-retry-count"), transport.DefaultRetryDelay))
			webhookTransport := transport.NewHTTPTransport(log.WithModule("webhook_transport"),
				transport.WithDefaultTimeout(services.DefaultWebhookTimeout))

			runner := flow.NewRunner(stepTransport, c.Resolver(), router.DefaultSkipRules(),
				flow.WithRunnerLogger(log.WithModule("step_runner")),
				flow.WithRunnerTracer(tracer),
			)

			orchestrator := services.NewOrchestrator(
				router.New(c, log.WithModule("flow_router")),
				flow.NewEngine(runner, engineOpts...),
				log.WithModule("orchestrator_service"),
				services.WithTracker(tracker, command.Duration("dedup-ttl")),
				services.WithWebhook(webhookTransport, command.String("webhook-url")),
			)

			api := NewAPI(logger, c, orchestrator)

			return api.Start(ctx, command.String("host"), command.Int("port"))
		},
	}
}
