package model

import (
	"fmt"
	"time"
)

// ============================================================================
// KAFKA MESSAGE STRUCTURES (From Reservation Service)
// ============================================================================

// ReservationEvent represents the message consumed from the reservation
// events topic
type ReservationEvent struct {
	EventType     string    `json:"event_type"`
	ReservationID string    `json:"reservation_id"`
	TripID        string    `json:"trip_id"`
	PassengerName string    `json:"passenger_name"`
	Seats         int       `json:"seats"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// ============================================================================
// NOTIFICATION TEMPLATES
// ============================================================================

// Notification represents a passenger notification to be delivered (logged
// to console)
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}

// ============================================================================
// NOTIFICATION GENERATION METHODS
// ============================================================================

// GenerateBookingConfirmation creates notification content for a confirmed
// reservation
func (e *ReservationEvent) GenerateBookingConfirmation() *Notification {
	subject := "Reservation Confirmed - Trip " + e.TripID

	body := "Dear " + e.PassengerName + ",\n\n" +
		"Your reservation has been confirmed!\n\n" +
		"Trip: " + e.TripID + "\n" +
		"Seats: " + fmt.Sprintf("%d", e.Seats) + "\n" +
		"Reservation ID: " + e.ReservationID + "\n" +
		"Booked at: " + e.Timestamp.Format("2006-01-02 15:04") + "\n\n" +
		"Thank you for travelling with us!\n\n" +
		"Bus Reservation System"

	return &Notification{
		Recipient: e.PassengerName,
		Subject:   subject,
		Body:      body,
	}
}

// GenerateCancellationConfirmation creates notification content for a
// cancelled reservation
func (e *ReservationEvent) GenerateCancellationConfirmation() *Notification {
	subject := "Reservation Cancelled - Trip " + e.TripID

	body := "Dear " + e.PassengerName + ",\n\n" +
		"Your reservation has been cancelled and the seats released.\n\n" +
		"Trip: " + e.TripID + "\n" +
		"Seats released: " + fmt.Sprintf("%d", e.Seats) + "\n" +
		"Reservation ID: " + e.ReservationID + "\n\n" +
		"We hope to see you again soon.\n\n" +
		"Bus Reservation System"

	return &Notification{
		Recipient: e.PassengerName,
		Subject:   subject,
		Body:      body,
	}
}

// ============================================================================
// API DATA TRANSFER OBJECTS (External - JSON tags for HTTP)
// ============================================================================

// HealthResponse represents the health check response
type HealthResponse struct {
	Status            string    `json:"status"`
	Service           string    `json:"service"`
	Timestamp         time.Time `json:"timestamp"`
	MessagesProcessed int64     `json:"messages_processed"`
}

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
