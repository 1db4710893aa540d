package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/ewaste-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/segmentio/kafka-go"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.msgs)
}

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

var _ = Describe("EventBus", func() {
	var (
		bus    *events.EventBus
		logger *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
	})

	It("delivers synchronously to every subscriber", func() {
		var got []string
		bus.Subscribe(events.EventTypeBatchCreated, func(_ context.Context, e events.Event) error {
			got = append(got, e.EventType())
			return nil
		})
		bus.Subscribe(events.EventTypeBatchCreated, func(_ context.Context, e events.Event) error {
			got = append(got, e.EventID())
			return nil
		})

		evt := events.NewBatchCreatedEvent(1, "GAI-1-COBA-12252024", 7)
		Expect(bus.PublishSync(context.Background(), evt)).To(Succeed())
		Expect(got).To(Equal([]string{events.EventTypeBatchCreated, evt.ID}))
	})

	It("surfaces handler errors on synchronous publish", func() {
		bus.Subscribe(events.EventTypeBatchDeleted, func(context.Context, events.Event) error {
			return errors.New("boom")
		})
		err := bus.PublishSync(context.Background(), events.NewBatchDeletedEvent(1, "K", 1))
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("runs async handlers after the publishing context is cancelled", func() {
		done := make(chan error, 1)
		bus.Subscribe(events.EventTypeBatchStatusChanged, func(ctx context.Context, _ events.Event) error {
			done <- ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewBatchStatusChangedEvent(1, "K", "pending", "completed", 2))).To(Succeed())
		Eventually(done, time.Second).Should(Receive(BeNil()))
	})

	It("reports a panicking handler as an error", func() {
		bus.Subscribe(events.EventTypeBatchDeleted, func(context.Context, events.Event) error {
			panic("nil batch")
		})
		err := bus.PublishSync(context.Background(), events.NewBatchDeletedEvent(1, "K", 1))
		Expect(err).To(MatchError(ContainSubstring("nil batch")))
	})

	It("drains in-flight async handlers", func() {
		release := make(chan struct{})
		var finished sync.WaitGroup
		finished.Add(1)
		bus.Subscribe(events.EventTypeBatchCreated, func(context.Context, events.Event) error {
			<-release
			finished.Done()
			return nil
		})
		Expect(bus.Publish(context.Background(), events.NewBatchCreatedEvent(1, "K", 1))).To(Succeed())

		short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		Expect(bus.Drain(short)).To(MatchError(context.DeadlineExceeded))

		close(release)
		Expect(bus.Drain(context.Background())).To(Succeed())
		finished.Wait()
	})

	It("ignores events without subscribers", func() {
		Expect(bus.Publish(context.Background(), events.NewBatchCreatedEvent(1, "K", 1))).To(Succeed())
	})
})

var _ = Describe("KafkaSink", func() {
	It("writes an envelope keyed by event type", func() {
		w := &fakeWriter{}
		sink := events.NewKafkaSink(w, slog.New(slog.NewTextHandler(io.Discard, nil)))

		evt := events.NewBatchItemsAddedEvent(5, "GAI-9-COBA-12252024", 2, 3, 11)
		Expect(sink.Handle(context.Background(), evt)).To(Succeed())
		Expect(w.msgs).To(HaveLen(1))
		Expect(string(w.msgs[0].Key)).To(Equal(events.EventTypeBatchItemsAdded))

		var decoded map[string]interface{}
		Expect(json.Unmarshal(w.msgs[0].Value, &decoded)).To(Succeed())
		Expect(decoded["type"]).To(Equal(events.EventTypeBatchItemsAdded))
		Expect(decoded["data"]).To(HaveKeyWithValue("batch_key", "GAI-9-COBA-12252024"))
	})

	It("subscribes to every batch lifecycle event", func() {
		w := &fakeWriter{}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus := events.NewEventBus(logger)
		events.NewKafkaSink(w, logger).Register(bus)

		Expect(bus.PublishSync(context.Background(), events.NewBatchCreatedEvent(1, "K", 1))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewBatchDeletedEvent(1, "K", 1))).To(Succeed())
		Expect(w.count()).To(Equal(2))
	})

	It("wraps writer failures", func() {
		w := &fakeWriter{err: errors.New("broker down")}
		sink := events.NewKafkaSink(w, slog.New(slog.NewTextHandler(io.Discard, nil)))
		err := sink.Handle(context.Background(), events.NewBatchCreatedEvent(1, "K", 1))
		Expect(err).To(MatchError(ContainSubstring("broker down")))
	})
})

var _ = Describe("KafkaConsumer", func() {
	It("replays sink envelopes onto the bus and commits them", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		w := &fakeWriter{}
		Expect(events.NewKafkaSink(w, logger).Handle(context.Background(),
			events.NewBatchStatusChangedEvent(3, "ACME-7-AT-01022025", "pending", "in_progress", 2))).To(Succeed())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reader := &fakeReader{cancel: cancel}
		reader.msgs = append(reader.msgs, w.msgs[0], kafka.Message{Offset: 9, Value: []byte("not json")})
		reader.msgs[0].Offset = 8

		bus := events.NewEventBus(logger)
		var received []events.Event
		bus.Subscribe(events.EventTypeBatchStatusChanged, func(_ context.Context, e events.Event) error {
			received = append(received, e)
			return nil
		})

		Expect(events.NewKafkaConsumer(reader, bus, logger).Run(ctx)).To(Succeed())

		Expect(received).To(HaveLen(1))
		Expect(received[0].Payload()).To(HaveKeyWithValue("to", "in_progress"))
		Expect(reader.committed).To(Equal([]int64{8, 9}))
	})

	It("rejects envelopes without a type", func() {
		_, err := events.DecodeEnvelope([]byte(`{"id":"x"}`))
		Expect(err).To(HaveOccurred())
	})
})
