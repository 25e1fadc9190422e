package events

import (
	"context"

	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"

	sourceService = "booking-service"
)

// Publisher emits booking lifecycle events. Publishing is best effort:
// failures are logged and never fail the request that triggered them.
type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingConfirmed(ctx context.Context, booking *model.Booking)
	BookingCancelled(ctx context.Context, booking *model.Booking)
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) (Publisher, error) {
	if len(brokers) == 0 {
		log.Info("No Kafka brokers configured, booking events disabled")
		return noopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(brokers, topic)
	if err != nil {
		return nil, err
	}

	log.Info("Kafka booking event publisher configured", "topic", topic)
	return &kafkaPublisher{producer: producer, log: log}, nil
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingCreated, booking)
}

func (p *kafkaPublisher) BookingConfirmed(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingConfirmed, booking)
}

func (p *kafkaPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, EventBookingCancelled, booking)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(booking).
		WithEventType(eventType).
		WithSource(sourceService).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "event_type", eventType, "error", err)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

func (noopPublisher) BookingCreated(context.Context, *model.Booking)   {}
func (noopPublisher) BookingConfirmed(context.Context, *model.Booking) {}
func (noopPublisher) BookingCancelled(context.Context, *model.Booking) {}
func (noopPublisher) Close() error                                     { return nil }
