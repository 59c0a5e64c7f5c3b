package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/foryou-podcast-core/internal/config"
	"github.com/rohankatakam/foryou-podcast-core/pkg/models"
)

// EngagementEvent is the wire shape published to the user-interactions
// topic. The ranking core never consumes this topic itself; it exists so
// external analytics can observe engagement without coupling to the
// engagement log's storage.
type EngagementEvent struct {
	Engagement models.Engagement `json:"engagement"`
	PublishedAt time.Time        `json:"published_at"`
}

// MessageBus publishes engagement events to Kafka on a best-effort basis.
// A publish failure is logged and swallowed: the engagement log's own
// Postgres write is authoritative, and the spec does not make analytics
// fan-out a precondition of any operation succeeding.
type MessageBus struct {
	writer *kafka.Writer
	topic  string
	logger *logrus.Logger
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) (*MessageBus, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return &MessageBus{logger: logger}, nil
	}

	topic := cfg.Kafka.Topics.UserInteractions
	if topic == "" {
		topic = "user-interactions"
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	return &MessageBus{writer: writer, topic: topic, logger: logger}, nil
}

// PublishEngagement fans the engagement out to the analytics topic. It
// never blocks the caller on broker availability beyond the given context.
func (mb *MessageBus) PublishEngagement(ctx context.Context, e models.Engagement) {
	if mb.writer == nil {
		return
	}

	event := EngagementEvent{Engagement: e, PublishedAt: time.Now()}
	payload, err := json.Marshal(event)
	if err != nil {
		mb.logger.WithError(err).Warn("failed to marshal engagement event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(e.UserID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "engagement_type", Value: []byte(e.Type)},
		},
	}

	if err := mb.writer.WriteMessages(ctx, msg); err != nil {
		mb.logger.WithError(err).WithField("user_id", e.UserID).
			Warn("failed to publish engagement event, continuing without analytics fan-out")
	}
}

func (mb *MessageBus) Close() error {
	if mb.writer == nil {
		return nil
	}
	if err := mb.writer.Close(); err != nil {
		return fmt.Errorf("failed to close message bus writer: %w", err)
	}
	return nil
}
