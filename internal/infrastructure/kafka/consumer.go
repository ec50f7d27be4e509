package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/honeynil/raffle-service/internal/models"
	"github.com/segmentio/kafka-go"
)

// Deliverer hands a notification to its final channel.
type Deliverer interface {
	Deliver(ctx context.Context, n models.Notification) error
}

var errMissingRecipient = errors.New("notification without recipient")

type Consumer struct {
	reader    *kafka.Reader
	deliverer Deliverer
}

func NewConsumer(brokers []string, topic, groupID string, deliverer Deliverer) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 10e3,
			MaxBytes: 10e6,
		}),
		deliverer: deliverer,
	}
}

// Consume blocks until ctx is cancelled.
func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("Kafka consumer stopped", "topic", c.reader.Config().Topic)
				return
			}
			slog.Error("failed to read Kafka message", "topic", c.reader.Config().Topic, "error", err)
			continue
		}

		c.handle(ctx, msg)
	}
}

// handle processes one message. Failures are logged and the message is skipped.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	slog.Info("Kafka message received", "topic", msg.Topic, "key", string(msg.Key))

	var n models.Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		slog.Error("failed to unmarshal notification", "key", string(msg.Key), "error", err)
		return err
	}
	if n.To == "" {
		slog.Error("notification without recipient", "id", n.ID, "kind", n.Kind)
		return errMissingRecipient
	}

	if err := c.deliverer.Deliver(ctx, n); err != nil {
		slog.Error("failed to deliver notification", "id", n.ID, "kind", n.Kind, "purchase_id", n.PurchaseID, "error", err)
		// TODO: Send to dead-letter queue
		return err
	}

	slog.Info("notification delivered", "id", n.ID, "kind", n.Kind, "purchase_id", n.PurchaseID)
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
