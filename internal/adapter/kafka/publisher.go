// Package kafka publishes fused updates to a downstream topic for
// consumers such as notification workers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/rainyindia/holiday-signal/internal/domain"
)

// Publisher produces update messages to a Kafka topic.
// It implements pipeline.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the sink topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishBatch serializes and publishes updates in a single
// WriteMessages call.
func (p *Publisher) PublishBatch(ctx context.Context, updates []domain.Update) error {
	if len(updates) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(updates))
	for i := range updates {
		msg, err := serializeToMessage(updates[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Update into a Kafka message keyed by
// update_id so per-place ordering is preserved within a partition.
func serializeToMessage(u domain.Update) (kafkago.Message, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize update: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(u.UpdateID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "holiday_type", Value: []byte(u.HolidayType)},
			{Key: "processed_at", Value: []byte(u.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
