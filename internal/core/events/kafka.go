package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the sink needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// KafkaSink forwards bus events to a topic, keyed by event type.
type KafkaSink struct {
	writer MessageWriter
	logger *slog.Logger
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewKafkaSink(writer MessageWriter, logger *slog.Logger) *KafkaSink {
	return &KafkaSink{writer: writer, logger: logger}
}

func (s *KafkaSink) Handle(ctx context.Context, event Event) error {
	value, err := json.Marshal(envelope{
		ID:         event.EventID(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt(),
		Data:       event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventID(), err)
	}

	msg := kafka.Message{
		Key:   []byte(event.EventType()),
		Value: value,
		Time:  event.OccurredAt(),
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s to kafka: %w", event.EventID(), err)
	}

	s.logger.Debug("event forwarded to kafka", "event_type", event.EventType(), "event_id", event.EventID())
	return nil
}

// Register subscribes the sink to every batch lifecycle event.
func (s *KafkaSink) Register(bus *EventBus) {
	bus.SubscribeMany(BatchEventTypes, s.Handle)
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// AuditLogger writes one structured line per lifecycle event.
func AuditLogger(logger *slog.Logger) Handler {
	return func(_ context.Context, event Event) error {
		logger.Info("batch lifecycle event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"data", event.Payload())
		return nil
	}
}

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// KafkaConsumer replays topic messages onto a local bus.
type KafkaConsumer struct {
	reader MessageReader
	bus    *EventBus
	logger *slog.Logger
}

func NewKafkaConsumer(reader MessageReader, bus *EventBus, logger *slog.Logger) *KafkaConsumer {
	return &KafkaConsumer{reader: reader, bus: bus, logger: logger}
}

// Run blocks until ctx is done or the reader fails. Messages that cannot be
// decoded are logged and committed so they do not block the partition.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch kafka message: %w", err)
		}

		event, err := DecodeEnvelope(msg.Value)
		if err != nil {
			c.logger.Warn("skipping undecodable event", "offset", msg.Offset, "partition", msg.Partition, "error", err)
		} else if err := c.bus.PublishSync(ctx, event); err != nil {
			c.logger.Error("event handler failed, message will be redelivered", "event_id", event.EventID(), "error", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit kafka message: %w", err)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

// DecodeEnvelope turns a message written by KafkaSink back into an event.
func DecodeEnvelope(value []byte) (Event, error) {
	var env struct {
		ID         string                 `json:"id"`
		Type       string                 `json:"type"`
		OccurredAt time.Time              `json:"occurred_at"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("decode event envelope: missing type")
	}
	return BaseEvent{
		ID:        env.ID,
		Type:      env.Type,
		Timestamp: env.OccurredAt,
		Data:      env.Data,
	}, nil
}
