package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ecofinds/marketplace/internal/core/domain"
)

// KafkaPublisher writes OrderPlaced events keyed by order id, so every event
// of one order lands on the same partition.
type KafkaPublisher struct {
	w        *kafka.Writer
	producer string
	now      func() time.Time
}

func NewKafkaPublisher(brokers []string, topic, producer string) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		producer: producer,
		now:      time.Now,
	}
}

func (p *KafkaPublisher) PublishOrder(ctx context.Context, order domain.Order) error {
	msg, err := p.message(order)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order %s: %w", order.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) message(order domain.Order) (kafka.Message, error) {
	env, err := NewOrderPlaced(order, p.producer, p.now())
	if err != nil {
		return kafka.Message{}, err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode envelope: %w", err)
	}

	return kafka.Message{
		Key:   []byte(order.ID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(env.EventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
		},
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
