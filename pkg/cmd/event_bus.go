// Package cmd holds constructors shared by the command line entry points.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/dukex/orchestrator/pkg/channels/gochannel"
	"github.com/dukex/orchestrator/pkg/channels/kafka"
	"github.com/dukex/orchestrator/pkg/eventbus"
	"github.com/dukex/orchestrator/pkg/events"
)

const (
	EventBusNone      = ""
	EventBusGoChannel = "gochannel"
	EventBusKafka     = "kafka"
)

// NewEventBus builds the lifecycle event bus for provider. It returns nil
// for EventBusNone.
func NewEventBus(provider string, brokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	wlogger := watermill.NewSlogLogger(logger)

	switch provider {
	case EventBusNone:
		return nil, nil
	case EventBusGoChannel:
		pub, sub, err := gochannel.CreateChannel(wlogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gochannel pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case EventBusKafka:
		pub, sub, err := kafka.CreateChannel(wlogger, "orchestrator", kafka.ParseBrokers(brokers))
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}

// LogEvents subscribes to every flow lifecycle event and logs it at debug
// level. Used with the in-memory bus, which has no other consumers.
func LogEvents(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	for _, eventType := range []events.EventType{
		events.FlowExecutionStartedEvent,
		events.FlowStepCompletedEvent,
		events.FlowExecutionCompletedEvent,
		events.FlowExecutionAbortedEvent,
	} {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			logger.DebugContext(ctx, "flow event", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
