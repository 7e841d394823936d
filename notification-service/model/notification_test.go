package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationEventDecoding(t *testing.T) {
	payload := []byte(`{
		"event_type": "reservation.booked",
		"reservation_id": "res-1",
		"trip_id": "trip-1",
		"passenger_name": "Jane Passenger",
		"seats": 3,
		"status": "BOOKED",
		"timestamp": "2026-08-31T10:00:00Z"
	}`)

	var event ReservationEvent
	require.NoError(t, json.Unmarshal(payload, &event))

	assert.Equal(t, "reservation.booked", event.EventType)
	assert.Equal(t, "res-1", event.ReservationID)
	assert.Equal(t, "trip-1", event.TripID)
	assert.Equal(t, 3, event.Seats)
	assert.Equal(t, "BOOKED", event.Status)
}

func TestGenerateBookingConfirmation(t *testing.T) {
	event := &ReservationEvent{
		EventType:     "reservation.booked",
		ReservationID: "res-1",
		TripID:        "trip-1",
		PassengerName: "Jane Passenger",
		Seats:         3,
		Status:        "BOOKED",
		Timestamp:     time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	}

	notification := event.GenerateBookingConfirmation()

	assert.Equal(t, "Jane Passenger", notification.Recipient)
	assert.Equal(t, "Reservation Confirmed - Trip trip-1", notification.Subject)
	assert.Contains(t, notification.Body, "Seats: 3")
	assert.Contains(t, notification.Body, "Reservation ID: res-1")
	assert.Contains(t, notification.Body, "2026-08-31 10:00")
}

func TestGenerateCancellationConfirmation(t *testing.T) {
	event := &ReservationEvent{
		EventType:     "reservation.cancelled",
		ReservationID: "res-1",
		TripID:        "trip-1",
		PassengerName: "Jane Passenger",
		Seats:         2,
		Status:        "CANCELLED",
	}

	notification := event.GenerateCancellationConfirmation()

	assert.Equal(t, "Reservation Cancelled - Trip trip-1", notification.Subject)
	assert.Contains(t, notification.Body, "Seats released: 2")
	assert.Contains(t, notification.Body, "Reservation ID: res-1")
}
