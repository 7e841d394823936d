package repository

import (
	"errors"
	"fmt"

	"github.com/arunvm123/busreservation/schedule-service/model"
)

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrTripNotFound  = errors.New("trip not found")
)

// InsufficientSeatsError is returned when an allocation asks for more seats
// than the trip currently has. It carries the availability observed inside
// the critical section so the caller can surface the true remaining count.
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats: %d available", e.Available)
}

// ScheduleRepository defines the interface for route, trip and seat
// inventory operations. AllocateSeats and ReleaseSeats are the only
// operations allowed to mutate a trip's seat counter, and implementations
// must serialize concurrent calls against the same trip.
type ScheduleRepository interface {
	// Route operations
	CreateRoute(req model.CreateRouteRequest) (*model.Route, error)
	ListRoutes() ([]model.Route, error)

	// Trip operations
	CreateTrip(req model.CreateTripRequest) (*model.Trip, error)
	GetTripByID(tripID string) (*model.Trip, error)
	SearchTrips(filter model.TripFilter) ([]model.Trip, error)

	// Seat inventory operations
	//
	// AllocateSeats atomically decrements the trip's availability and
	// returns the new value. Fails with ErrTripNotFound or
	// *InsufficientSeatsError.
	AllocateSeats(tripID string, count int) (int, error)

	// ReleaseSeats increases availability by count, clamped so it never
	// exceeds the trip's total. Returns the increase actually applied and
	// the new availability, making duplicate compensations harmless.
	ReleaseSeats(tripID string, count int) (int, int, error)

	// GetAvailability is a read-only, non-authoritative availability check.
	GetAvailability(tripID string) (int, error)

	// SeedIfEmpty populates demo routes and trips on an empty database
	SeedIfEmpty() error

	// Health check
	Ping() error
}
