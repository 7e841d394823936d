package saga

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/arunvm123/busreservation/reservation-service/events"
	"github.com/arunvm123/busreservation/reservation-service/model"
	"github.com/arunvm123/busreservation/reservation-service/repository"
	"github.com/arunvm123/busreservation/reservation-service/service"
)

// Orchestrator coordinates the two-step booking and cancellation sagas
// between the schedule service's seat inventory (remote) and the
// reservation store (local). The two sides are not covered by a single
// transaction, so the ordering is fixed in both directions: the remote
// allocate/release always happens before the local record write. The remote
// call is the authoritative decision; the local write only records an
// outcome the inventory has already committed.
type Orchestrator struct {
	repo      repository.ReservationRepository
	schedule  service.ScheduleService
	publisher events.Publisher

	mu          sync.Mutex
	cancelLocks map[string]*sync.Mutex
}

func NewOrchestrator(repo repository.ReservationRepository, schedule service.ScheduleService, publisher events.Publisher) *Orchestrator {
	return &Orchestrator{
		repo:        repo,
		schedule:    schedule,
		publisher:   publisher,
		cancelLocks: make(map[string]*sync.Mutex),
	}
}

// cancelLock returns the per-reservation mutex, creating it on first use
func (o *Orchestrator) cancelLock(reservationID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.cancelLocks[reservationID]
	if !ok {
		lock = &sync.Mutex{}
		o.cancelLocks[reservationID] = lock
	}
	return lock
}

// CreateReservation books seats on a trip.
//
// The availability pre-check is advisory: it rejects hopeless requests
// cheaply but guarantees nothing, since another booking can take the seats
// between the check and the allocate. Only AllocateSeats decides admission.
// If the local record write fails after a successful allocate, a
// compensating release is attempted before the error is surfaced; the
// release clamp makes that compensation safe to repeat.
func (o *Orchestrator) CreateReservation(req model.CreateReservationRequest) (*model.Reservation, error) {
	// Step 1: advisory fast-fail
	available, err := o.schedule.GetAvailability(req.TripID)
	if err != nil {
		return nil, err
	}
	if available < req.SeatsBooked {
		return nil, &service.InsufficientSeatsError{Available: available}
	}

	// Step 2: authoritative allocation. Any failure here aborts the saga
	// with no local side effect to undo. A timeout is ambiguous: the seats
	// may have been taken even though the response was lost, so the error
	// is surfaced rather than retried blindly.
	if _, err := o.schedule.AllocateSeats(req.TripID, req.SeatsBooked); err != nil {
		return nil, err
	}

	// Step 3: local record, written only after the inventory committed
	reservation, err := o.repo.CreateReservation(req)
	if err != nil {
		if _, releaseErr := o.schedule.ReleaseSeats(req.TripID, req.SeatsBooked); releaseErr != nil {
			// Seats stay consumed with no record until reconciled
			log.Printf("compensating release failed for trip %s: %v", req.TripID, releaseErr)
		}
		return nil, fmt.Errorf("failed to persist reservation: %w", err)
	}

	o.publish(events.EventReservationBooked, reservation)

	return reservation, nil
}

// CancelReservation releases a reservation's seats and marks it cancelled.
//
// Cancelling an already-cancelled reservation is an idempotent no-op that
// must not issue a second release. Cancels of the same reservation run
// inside a per-reservation critical section, so the status check and the
// release act as one step and concurrent cancels cannot both release. The
// release is the compensating action and always precedes the status write:
// the reservation stays BOOKED until the seats are actually back in the
// inventory, so a failed release never strands seats that are neither
// bookable nor attached to a live booking.
func (o *Orchestrator) CancelReservation(reservationID string) (*model.Reservation, error) {
	lock := o.cancelLock(reservationID)
	lock.Lock()
	defer lock.Unlock()

	reservation, err := o.repo.GetReservationByID(reservationID)
	if err != nil {
		return nil, err
	}

	if reservation.Status == model.StatusCancelled {
		return reservation, nil
	}

	if _, err := o.schedule.ReleaseSeats(reservation.TripID, reservation.SeatsBooked); err != nil {
		return nil, err
	}

	updated, err := o.repo.UpdateReservationStatus(reservationID, model.StatusCancelled)
	if err != nil {
		// Seats are released but the record still reads BOOKED. Retrying
		// the cancel is safe: the duplicate release clamps to zero.
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}

	o.publish(events.EventReservationCancelled, updated)

	return updated, nil
}

// GetReservation returns a reservation by ID
func (o *Orchestrator) GetReservation(reservationID string) (*model.Reservation, error) {
	return o.repo.GetReservationByID(reservationID)
}

// ListReservations returns reservations booked by the given user, newest
// first
func (o *Orchestrator) ListReservations(bookedBy string) ([]model.Reservation, error) {
	return o.repo.ListReservations(bookedBy)
}

func (o *Orchestrator) publish(eventType string, reservation *model.Reservation) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := o.publisher.PublishReservationEvent(ctx, events.ReservationEvent{
		EventType:     eventType,
		ReservationID: reservation.ID,
		TripID:        reservation.TripID,
		PassengerName: reservation.PassengerName,
		Seats:         reservation.SeatsBooked,
		Status:        reservation.Status,
		Timestamp:     time.Now().UTC(),
	})
	if err != nil {
		log.Printf("failed to publish %s event for reservation %s: %v", eventType, reservation.ID, err)
	}
}
