package config

import (
	"log/slog"
	"strings"

	"github.com/cyberguard/awareness-service/internal/events"
)

const (
	PublisherKafka     = "kafka"
	PublisherAMQP      = "amqp"
	PublisherGoChannel = "gochannel"
	PublisherMock      = "mock"
)

// EventConfig selects where progress events go
type EventConfig struct {
	Enabled       bool   `mapstructure:"events_enabled"`
	Publisher     string `mapstructure:"events_publisher"` // kafka, amqp, gochannel or mock
	KafkaBrokers  string `mapstructure:"kafka_brokers"`    // comma separated
	ProgressTopic string `mapstructure:"progress_topic"`
	AMQPURL       string `mapstructure:"amqp_url"`
	AMQPExchange  string `mapstructure:"amqp_exchange"`
}

// GetKafkaBrokers splits KAFKA_BROKERS, dropping blanks
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher builds the configured publisher. Disabled events and
// unknown publisher names both yield the in-memory mock, so the service
// always has somewhere to publish.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	publisher := c.Publisher
	if !c.Enabled {
		publisher = PublisherMock
	}

	switch publisher {
	case PublisherKafka:
		logger.Info("Publishing progress events to Kafka", "brokers", c.GetKafkaBrokers(), "topic", c.ProgressTopic)
		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.ProgressTopic,
			Logger:       logger,
		})
	case PublisherAMQP:
		logger.Info("Publishing progress events to RabbitMQ", "exchange", c.AMQPExchange)
		return events.NewAMQPEventPublisher(events.AMQPConfig{
			URL:      c.AMQPURL,
			Exchange: c.AMQPExchange,
			Logger:   logger,
		})
	case PublisherGoChannel:
		logger.Info("Publishing progress events in process", "topic", c.ProgressTopic)
		p, _ := events.NewGoChannelEventPublisher(c.ProgressTopic, logger)
		return p, nil
	case PublisherMock:
		logger.Info("Progress events are recorded in memory only", "enabled", c.Enabled)
	default:
		logger.Warn("Unknown EVENTS_PUBLISHER, recording events in memory", "publisher", c.Publisher)
	}
	return events.NewMockEventPublisher(logger), nil
}

// SubscriberConfig describes a Kafka consumer of the progress topic
func (c *EventConfig) SubscriberConfig(group string, logger *slog.Logger) events.SubscriberConfig {
	return events.SubscriberConfig{
		KafkaBrokers:  c.GetKafkaBrokers(),
		ConsumerGroup: group,
		Logger:        logger,
	}
}
