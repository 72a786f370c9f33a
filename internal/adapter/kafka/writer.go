package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/snow-emergency-skill/internal/config"
	"github.com/couchcryptid/snow-emergency-skill/internal/domain"
	"github.com/couchcryptid/snow-emergency-skill/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// LookupWriter publishes city lookup events to a Kafka topic.
// It implements skill.LookupPublisher.
//
// Writes are asynchronous so a slow broker never delays a voice reply;
// delivery results are reported through the completion callback.
type LookupWriter struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewLookupWriter creates a Kafka producer for the configured lookup topic.
func NewLookupWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *LookupWriter {
	lw := &LookupWriter{metrics: metrics, logger: logger}
	lw.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaLookupTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion:   lw.completed,
	}
	return lw
}

// Publish queues one lookup event. Errors are limited to serialization and
// queueing; broker failures surface in the completion callback.
func (w *LookupWriter) Publish(ctx context.Context, event domain.LookupEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		w.metrics.LookupEvents.WithLabelValues("error").Inc()
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.LookupEvents.WithLabelValues("error").Inc()
		return fmt.Errorf("queue lookup event: %w", err)
	}
	return nil
}

func (w *LookupWriter) completed(messages []kafkago.Message, err error) {
	if err != nil {
		w.metrics.LookupEvents.WithLabelValues("error").Add(float64(len(messages)))
		w.logger.Warn("lookup events not delivered", "error", err, "count", len(messages))
		return
	}
	w.metrics.LookupEvents.WithLabelValues("success").Add(float64(len(messages)))
}

// Close flushes pending writes.
func (w *LookupWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a LookupEvent into a Kafka message keyed by
// city so one city's lookups stay on one partition.
func serializeToMessage(event domain.LookupEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize lookup event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.CityKey),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "looked_up_at", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
