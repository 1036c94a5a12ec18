package repository

import (
	"context"

	"GoldPredict/internal/domain/models"
	"GoldPredict/internal/domain/repository"
	pkgkafka "GoldPredict/pkg/kafka"
)

// EventTypeSettled is the event-type header on settlement messages.
const EventTypeSettled = "prediction.settled"

type batchProducer interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
}

// KafkaPublisher implements EventPublisher for Kafka. Events are keyed by
// user so a user's settlements stay ordered within a partition.
type KafkaPublisher struct {
	producer batchProducer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.EventPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishSettled(ctx context.Context, events []models.SettlementEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(events))
	for i, ev := range events {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(ev.UserID),
			Value: ev,
			Headers: map[string]string{
				"event-type":      EventTypeSettled,
				"content-type":    "application/json",
				"settlement-date": ev.Date,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}
