package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const amqpPublishTimeout = 5 * time.Second

// AMQPConfig holds configuration for the RabbitMQ publisher
type AMQPConfig struct {
	URL      string
	Exchange string
	Logger   *slog.Logger
}

// AMQPEventPublisher publishes progress events to a durable topic exchange.
// The routing key is the event type, so consumers can bind to e.g.
// "challenge.*".
type AMQPEventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
}

func NewAMQPEventPublisher(config AMQPConfig) (*AMQPEventPublisher, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	if err := channel.ExchangeDeclare(config.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", config.Exchange, err)
	}

	return &AMQPEventPublisher{
		conn:     conn,
		channel:  channel,
		exchange: config.Exchange,
		logger:   config.Logger,
	}, nil
}

func (p *AMQPEventPublisher) PublishProgressEvent(ctx context.Context, event *ProgressEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, amqpPublishTimeout)
	defer cancel()

	if err := p.channel.PublishWithContext(pubCtx, p.exchange, string(event.Type), false, false, msg); err != nil {
		p.logger.Error("Failed to publish progress event",
			"event_id", event.ID,
			"event_type", event.Type,
			"exchange", p.exchange,
			"error", err)
		return fmt.Errorf("failed to publish progress event: %w", err)
	}

	p.logger.Debug("Published progress event", "event_id", event.ID, "event_type", event.Type, "exchange", p.exchange)
	return nil
}

func (p *AMQPEventPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.logger.Warn("Error closing RabbitMQ channel", "error", err)
	}
	return p.conn.Close()
}

func newPublishing(event *ProgressEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal progress event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.Timestamp,
		Type:         string(event.Type),
		AppId:        event.Source,
		Headers: amqp.Table{
			"client_id": event.ClientID,
			"version":   event.Version,
		},
		Body: body,
	}, nil
}
