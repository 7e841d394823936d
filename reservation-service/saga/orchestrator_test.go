package saga

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/arunvm123/busreservation/reservation-service/events"
	"github.com/arunvm123/busreservation/reservation-service/model"
	"github.com/arunvm123/busreservation/reservation-service/repository"
	"github.com/arunvm123/busreservation/reservation-service/repository/memory"
	"github.com/arunvm123/busreservation/reservation-service/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const testTripID = "trip-1"

// fakeScheduleService reproduces the inventory semantics of the schedule
// service for a single trip: serialized allocate/release with the release
// clamped at the total. It records calls so tests can assert how often the
// orchestrator touched the remote side.
type fakeScheduleService struct {
	mu             sync.Mutex
	seatsTotal     int
	seatsAvailable int

	availabilityCalls int
	allocateCalls     int
	releaseCalls      int

	allocateErr     error
	releaseErr      error
	availabilityErr error
}

func newFakeScheduleService(seats int) *fakeScheduleService {
	return &fakeScheduleService{seatsTotal: seats, seatsAvailable: seats}
}

func (f *fakeScheduleService) GetAvailability(tripID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.availabilityCalls++
	if f.availabilityErr != nil {
		return 0, f.availabilityErr
	}
	if tripID != testTripID {
		return 0, service.ErrTripNotFound
	}
	return f.seatsAvailable, nil
}

func (f *fakeScheduleService) AllocateSeats(tripID string, count int) (*service.AllocationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allocateCalls++
	if f.allocateErr != nil {
		return nil, f.allocateErr
	}
	if tripID != testTripID {
		return nil, service.ErrTripNotFound
	}
	if f.seatsAvailable < count {
		return nil, &service.InsufficientSeatsError{Available: f.seatsAvailable}
	}
	f.seatsAvailable -= count
	return &service.AllocationResult{TripID: tripID, Allocated: count, SeatsAvailable: f.seatsAvailable}, nil
}

func (f *fakeScheduleService) ReleaseSeats(tripID string, count int) (*service.ReleaseResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseCalls++
	if f.releaseErr != nil {
		return nil, f.releaseErr
	}
	if tripID != testTripID {
		return nil, service.ErrTripNotFound
	}
	newAvailable := f.seatsAvailable + count
	if newAvailable > f.seatsTotal {
		newAvailable = f.seatsTotal
	}
	released := newAvailable - f.seatsAvailable
	f.seatsAvailable = newAvailable
	return &service.ReleaseResult{TripID: tripID, Released: released, SeatsAvailable: newAvailable}, nil
}

func (f *fakeScheduleService) availability() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seatsAvailable
}

// failingRepo wraps the in-memory repository to force local write failures
type failingRepo struct {
	repository.ReservationRepository
	failCreate bool
	failUpdate bool
}

func (f *failingRepo) CreateReservation(req model.CreateReservationRequest) (*model.Reservation, error) {
	if f.failCreate {
		return nil, errors.New("database unavailable")
	}
	return f.ReservationRepository.CreateReservation(req)
}

func (f *failingRepo) UpdateReservationStatus(reservationID, status string) (*model.Reservation, error) {
	if f.failUpdate {
		return nil, errors.New("database unavailable")
	}
	return f.ReservationRepository.UpdateReservationStatus(reservationID, status)
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ReservationEvent
}

func (p *recordingPublisher) PublishReservationEvent(ctx context.Context, event events.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []events.ReservationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ReservationEvent(nil), p.events...)
}

func bookingRequest(seats int) model.CreateReservationRequest {
	return model.CreateReservationRequest{
		TripID:        testTripID,
		PassengerName: "Jane Passenger",
		SeatsBooked:   seats,
		BookedBy:      "user-1",
	}
}

func TestCreateReservationSuccess(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := memory.NewReservationRepository()
	publisher := &recordingPublisher{}
	orchestrator := NewOrchestrator(repo, schedule, publisher)

	reservation, err := orchestrator.CreateReservation(bookingRequest(3))
	require.NoError(t, err)

	assert.Equal(t, model.StatusBooked, reservation.Status)
	assert.Equal(t, 3, reservation.SeatsBooked)
	assert.Equal(t, testTripID, reservation.TripID)
	assert.Equal(t, 37, schedule.availability())
	assert.Equal(t, 1, schedule.allocateCalls)

	stored, err := repo.GetReservationByID(reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, stored.Status)

	published := publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventReservationBooked, published[0].EventType)
	assert.Equal(t, reservation.ID, published[0].ReservationID)
}

func TestCreateReservationInsufficientAtPrecheck(t *testing.T) {
	schedule := newFakeScheduleService(2)
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	_, err := orchestrator.CreateReservation(bookingRequest(3))

	var insufficientErr *service.InsufficientSeatsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 2, insufficientErr.Available)

	// The advisory rejection must not touch the mutating path
	assert.Equal(t, 0, schedule.allocateCalls)
	assert.Equal(t, 2, schedule.availability())

	reservations, err := repo.ListReservations("")
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

// The pre-check passing does not guarantee admission: the authoritative
// allocate can still reject, and no record may exist afterwards.
func TestCreateReservationAllocateConflict(t *testing.T) {
	schedule := newFakeScheduleService(5)
	schedule.allocateErr = &service.InsufficientSeatsError{Available: 0}
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	_, err := orchestrator.CreateReservation(bookingRequest(2))

	var insufficientErr *service.InsufficientSeatsError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 0, insufficientErr.Available)

	reservations, err := repo.ListReservations("")
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

func TestCreateReservationUpstreamFailure(t *testing.T) {
	schedule := newFakeScheduleService(40)
	schedule.allocateErr = &service.UpstreamError{Message: "request timed out"}
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	_, err := orchestrator.CreateReservation(bookingRequest(2))

	var upstreamErr *service.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)

	// The outcome is ambiguous, so no record is written and no blind
	// compensation is issued
	assert.Equal(t, 0, schedule.releaseCalls)
	reservations, err := repo.ListReservations("")
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

func TestCreateReservationUnknownTrip(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	req := bookingRequest(2)
	req.TripID = "unknown-trip"
	_, err := orchestrator.CreateReservation(req)

	assert.ErrorIs(t, err, service.ErrTripNotFound)
	assert.Equal(t, 0, schedule.allocateCalls)
}

func TestCreateReservationLocalWriteFailureCompensates(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := &failingRepo{ReservationRepository: memory.NewReservationRepository(), failCreate: true}
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	_, err := orchestrator.CreateReservation(bookingRequest(4))
	require.Error(t, err)

	// The allocated seats were handed back
	assert.Equal(t, 1, schedule.allocateCalls)
	assert.Equal(t, 1, schedule.releaseCalls)
	assert.Equal(t, 40, schedule.availability())
}

func TestCancelReservationSuccess(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := memory.NewReservationRepository()
	publisher := &recordingPublisher{}
	orchestrator := NewOrchestrator(repo, schedule, publisher)

	reservation, err := orchestrator.CreateReservation(bookingRequest(3))
	require.NoError(t, err)
	require.Equal(t, 37, schedule.availability())

	cancelled, err := orchestrator.CancelReservation(reservation.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, 3, cancelled.SeatsBooked)
	assert.Equal(t, 40, schedule.availability())
	assert.Equal(t, 1, schedule.releaseCalls)

	published := publisher.published()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventReservationCancelled, published[1].EventType)
}

func TestCancelReservationIdempotent(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	reservation, err := orchestrator.CreateReservation(bookingRequest(3))
	require.NoError(t, err)

	first, err := orchestrator.CancelReservation(reservation.ID)
	require.NoError(t, err)
	require.Equal(t, 1, schedule.releaseCalls)

	// The second cancel returns the same record and issues no extra release
	second, err := orchestrator.CancelReservation(reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.SeatsBooked, second.SeatsBooked)
	assert.Equal(t, 1, schedule.releaseCalls)
	assert.Equal(t, 40, schedule.availability())
}

// Concurrent cancels of the same reservation must behave like sequential
// ones: exactly one release. The second booking keeps headroom below the
// clamp, so a duplicate release would inflate availability instead of being
// absorbed.
func TestConcurrentCancelsReleaseOnce(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	reservation, err := orchestrator.CreateReservation(bookingRequest(3))
	require.NoError(t, err)
	_, err = orchestrator.CreateReservation(bookingRequest(30))
	require.NoError(t, err)
	require.Equal(t, 7, schedule.availability())

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := orchestrator.CancelReservation(reservation.ID)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, schedule.releaseCalls)
	assert.Equal(t, 10, schedule.availability())

	cancelled, err := orchestrator.GetReservation(reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
}

func TestCancelReservationNotFound(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	_, err := orchestrator.CancelReservation("missing")
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
	assert.Equal(t, 0, schedule.releaseCalls)
}

// A failed release leaves the reservation BOOKED: cancellation is never
// acknowledged before the seats are actually back in the inventory.
func TestCancelReservationReleaseFailureStaysBooked(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	reservation, err := orchestrator.CreateReservation(bookingRequest(3))
	require.NoError(t, err)

	schedule.releaseErr = &service.UpstreamError{Message: "request timed out"}
	_, err = orchestrator.CancelReservation(reservation.ID)
	require.Error(t, err)

	stored, err := repo.GetReservationByID(reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, stored.Status)
	assert.Equal(t, 37, schedule.availability())

	// Once the inventory is reachable again the cancel goes through
	schedule.releaseErr = nil
	cancelled, err := orchestrator.CancelReservation(reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, 40, schedule.availability())
}

// A failed status write after a successful release leaves released seats
// with a BOOKED record. Retrying the cancel is safe because the duplicate
// release clamps to zero.
func TestCancelReservationStatusWriteFailureIsRetryable(t *testing.T) {
	schedule := newFakeScheduleService(40)
	repo := &failingRepo{ReservationRepository: memory.NewReservationRepository()}
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	reservation, err := orchestrator.CreateReservation(bookingRequest(3))
	require.NoError(t, err)

	repo.failUpdate = true
	_, err = orchestrator.CancelReservation(reservation.ID)
	require.Error(t, err)
	assert.Equal(t, 40, schedule.availability())

	stored, err := repo.GetReservationByID(reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, stored.Status)

	repo.failUpdate = false
	cancelled, err := orchestrator.CancelReservation(reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	// The retry issued a second release, clamped to nothing
	assert.Equal(t, 2, schedule.releaseCalls)
	assert.Equal(t, 40, schedule.availability())
}

// Conservation: available seats plus seats held by BOOKED reservations
// always add up to the trip's total when all mutations flow through the
// orchestrator.
func TestConservationUnderConcurrentBookingAndCancellation(t *testing.T) {
	const seatsTotal = 40

	schedule := newFakeScheduleService(seatsTotal)
	repo := memory.NewReservationRepository()
	orchestrator := NewOrchestrator(repo, schedule, events.NewNoopPublisher())

	// More attempts than seats: the overflow must fail cleanly
	var g errgroup.Group
	for i := 0; i < 60; i++ {
		g.Go(func() error {
			_, err := orchestrator.CreateReservation(bookingRequest(1))
			var insufficientErr *service.InsufficientSeatsError
			if err != nil && !errors.As(err, &insufficientErr) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	reservations, err := repo.ListReservations("")
	require.NoError(t, err)
	require.Len(t, reservations, seatsTotal)
	assert.Equal(t, 0, schedule.availability())

	// Cancel half of them concurrently
	var c errgroup.Group
	for i := 0; i < seatsTotal/2; i++ {
		id := reservations[i].ID
		c.Go(func() error {
			_, err := orchestrator.CancelReservation(id)
			return err
		})
	}
	require.NoError(t, c.Wait())

	booked := 0
	final, err := repo.ListReservations("")
	require.NoError(t, err)
	for _, reservation := range final {
		if reservation.Status == model.StatusBooked {
			booked += reservation.SeatsBooked
		}
	}
	assert.Equal(t, seatsTotal, schedule.availability()+booked)
	assert.Equal(t, seatsTotal/2, schedule.availability())
}
