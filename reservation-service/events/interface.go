package events

import (
	"context"
	"time"
)

// Reservation lifecycle event types
const (
	EventReservationBooked    = "reservation.booked"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is the message published for every reservation
// lifecycle transition
type ReservationEvent struct {
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	TripID        string    `json:"trip_id"`
	PassengerName string    `json:"passenger_name"`
	Seats         int       `json:"seats"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher defines the interface for emitting reservation events.
// Publishing is best effort: a failed publish never fails or rolls back the
// reservation it describes.
type Publisher interface {
	PublishReservationEvent(ctx context.Context, event ReservationEvent) error
	Close() error
}

// NoopPublisher satisfies Publisher without a broker, for tests and local
// development
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) PublishReservationEvent(ctx context.Context, event ReservationEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
