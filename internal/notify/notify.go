package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/honeynil/raffle-service/internal/infrastructure/kafka"
	"github.com/honeynil/raffle-service/internal/models"
)

//go:generate mockgen -source=notify.go -destination=mocks/mock_notifier.go -package=mocks

// Notifier hands notifications to the mail pipeline. Delivery itself is
// asynchronous; a nil error only means the message was accepted.
type Notifier interface {
	Publish(ctx context.Context, n models.Notification) error
}

type KafkaNotifier struct {
	producer kafka.KafkaProducer
	topic    string
}

func NewKafkaNotifier(producer kafka.KafkaProducer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// Publish keys messages by purchase so one purchase's notifications stay ordered.
func (k *KafkaNotifier) Publish(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := k.producer.Send(ctx, k.topic, strconv.FormatInt(n.PurchaseID, 10), payload); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}
