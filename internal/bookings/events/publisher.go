// Package events publishes booking lifecycle changes to Kafka so downstream
// consumers (notifications, reporting) can react without polling the store.
package events

import (
	"context"
	"fmt"

	"medibook/pkg/config"
	"medibook/pkg/kafka"
	"medibook/pkg/logger"
	"medibook/pkg/model"
)

const (
	EventTypeCreated      = "booking.created"
	EventTypeTransitioned = "booking.transitioned"

	sourceService = "bookings"
)

type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	logger   *logger.Logger
}

// NewKafkaPublisher builds a publisher backed by the shared Kafka producer.
func NewKafkaPublisher(cfg *config.Config) (Publisher, error) {
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaEventsTopic,
		BatchTimeout: cfg.KafkaBatchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}

	return &kafkaPublisher{
		producer: producer,
		logger:   cfg.Log,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	eventType := EventTypeTransitioned
	if event.PreviousStatus == "" {
		eventType = EventTypeCreated
	}

	// Keyed by booking ID so all events for one booking land on the same
	// partition in order.
	msg, err := kafka.NewJSONMessage(event.BookingID, eventType, sourceService, event)
	if err != nil {
		return fmt.Errorf("failed to encode booking event: %w", err)
	}

	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops all events. Used when no Kafka brokers are configured,
// typically in local development.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event model.BookingEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
