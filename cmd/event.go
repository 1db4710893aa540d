package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/ewaste-management/internal/core/events"
	"github.com/frahmantamala/ewaste-management/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish test batch events and consume the batch event topic`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the local bus, and to Kafka when it is enabled`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publishTestEvent(args[0])
	},
}

var consumeEventCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume batch events from Kafka",
	Long:  `Read the batch event topic and write every event to the audit log until interrupted`,
	Run: func(cmd *cobra.Command, args []string) {
		consumeEvents()
	},
}

var (
	eventData     string
	consumerGroup string
)

func publishTestEvent(eventType string) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)
	eventBus.Subscribe(eventType, events.AuditLogger(logger))

	if cfg.Events.Kafka.Enabled {
		sink := events.NewKafkaSink(events.NewKafkaWriter(cfg.Events.Kafka.BrokerList(), cfg.Events.Kafka.Topic), logger)
		defer sink.Close()
		eventBus.Subscribe(eventType, sink.Handle)
	}

	testEvent := events.BaseEvent{
		ID:        fmt.Sprintf("test-%d", time.Now().Unix()),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": eventData,
			"source":  "cli-command",
		},
	}

	logger.Info("publishing test event", "event_type", eventType, "event_id", testEvent.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := eventBus.PublishSync(ctx, testEvent); err != nil {
		logger.Error("failed to publish event", "error", err)
		return
	}

	logger.Info("test event published successfully")
}

func consumeEvents() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logger.LoggerWrapper()

	if !cfg.Events.Kafka.Enabled {
		fmt.Fprintln(os.Stderr, "Kafka is disabled; set events.kafka.enabled to consume batch events")
		os.Exit(1)
	}

	group := cfg.Events.Kafka.GroupID
	if consumerGroup != "" {
		group = consumerGroup
	}

	bus := events.NewEventBus(logger)
	bus.SubscribeMany(events.BatchEventTypes, events.AuditLogger(logger))

	consumer := events.NewKafkaConsumer(
		events.NewKafkaReader(cfg.Events.Kafka.BrokerList(), cfg.Events.Kafka.Topic, group),
		bus,
		logger,
	)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("consuming batch events", "topic", cfg.Events.Kafka.Topic, "group_id", group)
	if err := consumer.Run(ctx); err != nil {
		logger.Error("event consumer stopped", "error", err)
		return
	}
	logger.Info("event consumer shutdown complete")
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "Event data message")
	consumeEventCmd.Flags().StringVar(&consumerGroup, "group", "", "Kafka consumer group (overrides config)")

	eventCmd.AddCommand(publishEventCmd)
	eventCmd.AddCommand(consumeEventCmd)

	rootCmd.AddCommand(eventCmd)
}
