package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/key-verify-api/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher writes validation events to a Kafka topic, keyed by user id so
// events for one user stay on one partition.
type Publisher struct {
	writer *kafkago.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		MaxAttempts:            1,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *Publisher) Publish(ctx context.Context, ev domain.ValidationEvent) error {
	msg, err := message(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", ev.EventID, err)
	}
	return nil
}

// Close flushes pending writes and releases connections.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func message(ev domain.ValidationEvent) (kafkago.Message, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.UserID),
		Value: body,
		Time:  ev.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(domain.EventTypeUserValidated)},
			{Key: "event_id", Value: []byte(ev.EventID)},
		},
	}, nil
}
