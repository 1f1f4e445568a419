package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SubscriberConfig holds configuration for the Kafka subscriber
type SubscriberConfig struct {
	KafkaBrokers  []string
	ConsumerGroup string
	Logger        *slog.Logger
}

// NewKafkaSubscriber creates a subscriber for progress topics. Downstream
// consumers (notifications, analytics) use it; so does the events CLI.
func NewKafkaSubscriber(config SubscriberConfig) (message.Subscriber, error) {
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       config.KafkaBrokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: config.ConsumerGroup,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return subscriber, nil
}

// DecodedEvent is a ProgressEvent read back from the wire, with the payload
// left raw until the caller knows its type.
type DecodedEvent struct {
	ProgressEvent
	Data json.RawMessage `json:"data"`
}

// DecodeProgressEvent parses a message produced by PublishProgressEvent
func DecodeProgressEvent(msg *message.Message) (*DecodedEvent, error) {
	var event DecodedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode progress event %s: %w", msg.UUID, err)
	}
	return &event, nil
}

// Consume delivers every event on topic to handle until ctx is cancelled.
// Messages that fail to decode or handle are nacked.
func Consume(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger, handle func(*DecodedEvent) error) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := DecodeProgressEvent(msg)
			if err == nil {
				err = handle(event)
			}
			if err != nil {
				logger.Warn("Failed to handle progress event", "message_id", msg.UUID, "error", err)
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}
}
