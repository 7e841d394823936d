package service

import (
	"errors"
	"fmt"
)

// ErrTripNotFound indicates the schedule service does not know the trip
var ErrTripNotFound = errors.New("trip not found")

// InsufficientSeatsError carries the availability reported by the schedule
// service when an allocation is rejected, so the true remaining count can be
// passed through to the caller.
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats: %d available", e.Available)
}

// UpstreamError indicates the schedule service could not be reached or
// answered with an unexpected status. When Status is zero the request never
// completed (network error or timeout) and the outcome is ambiguous: the
// remote mutation may have been applied even though the response was lost.
// Callers must not treat it as either success or failure of the mutation.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("schedule service unreachable: %s", e.Message)
	}
	return fmt.Sprintf("schedule service error (status %d): %s", e.Status, e.Message)
}

// AllocationResult reports a successful seat allocation
type AllocationResult struct {
	TripID         string `json:"trip_id"`
	Allocated      int    `json:"allocated"`
	SeatsAvailable int    `json:"seats_available"`
}

// ReleaseResult reports a successful seat release. Released may be lower
// than requested when the trip had already been fully released.
type ReleaseResult struct {
	TripID         string `json:"trip_id"`
	Released       int    `json:"released"`
	SeatsAvailable int    `json:"seats_available"`
}

// ScheduleService defines the interface for communicating with the Schedule
// Service's seat inventory. GetAvailability is advisory only; AllocateSeats
// is the single authoritative admission decision.
type ScheduleService interface {
	// GetAvailability returns the current advisory seat count for a trip
	GetAvailability(tripID string) (int, error)

	// AllocateSeats atomically claims seats on a trip
	AllocateSeats(tripID string, count int) (*AllocationResult, error)

	// ReleaseSeats returns seats to a trip (the compensating action for a
	// prior allocation)
	ReleaseSeats(tripID string, count int) (*ReleaseResult, error)
}
