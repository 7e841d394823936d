package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/arunvm123/busreservation/schedule-service/model"
	"github.com/arunvm123/busreservation/schedule-service/repository"
	"github.com/google/uuid"
)

// MemoryScheduleRepository is an in-memory ScheduleRepository used for tests
// and local development. It reproduces the serialization guarantee of the
// postgres implementation's row locks with a lock table keyed by trip ID:
// allocate/release/availability on the same trip run inside that trip's
// critical section, while different trips proceed independently.
type MemoryScheduleRepository struct {
	mu     sync.RWMutex
	routes map[string]*model.Route
	trips  map[string]*model.Trip
	locks  map[string]*sync.Mutex
}

func NewScheduleRepository() *MemoryScheduleRepository {
	return &MemoryScheduleRepository{
		routes: make(map[string]*model.Route),
		trips:  make(map[string]*model.Trip),
		locks:  make(map[string]*sync.Mutex),
	}
}

// tripLock returns the per-trip mutex, creating it on first use
func (r *MemoryScheduleRepository) tripLock(tripID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[tripID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[tripID] = lock
	}
	return lock
}

func (r *MemoryScheduleRepository) getTrip(tripID string) (*model.Trip, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	trip, ok := r.trips[tripID]
	return trip, ok
}

// Route operations
func (r *MemoryScheduleRepository) CreateRoute(req model.CreateRouteRequest) (*model.Route, error) {
	route := &model.Route{
		ID:          uuid.New().String(),
		Origin:      req.Origin,
		Destination: req.Destination,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.routes[route.ID] = route
	r.mu.Unlock()

	copied := *route
	return &copied, nil
}

func (r *MemoryScheduleRepository) ListRoutes() ([]model.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]model.Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, *route)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Origin != routes[j].Origin {
			return routes[i].Origin < routes[j].Origin
		}
		return routes[i].Destination < routes[j].Destination
	})
	return routes, nil
}

// Trip operations
func (r *MemoryScheduleRepository) CreateTrip(req model.CreateTripRequest) (*model.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route, ok := r.routes[req.RouteID]
	if !ok {
		return nil, repository.ErrRouteNotFound
	}

	trip := &model.Trip{
		ID:             uuid.New().String(),
		RouteID:        req.RouteID,
		DepartureTime:  req.DepartureTime,
		SeatsTotal:     req.SeatsTotal,
		SeatsAvailable: req.SeatsTotal,
		CreatedAt:      time.Now().UTC(),
		Route:          *route,
	}
	r.trips[trip.ID] = trip

	copied := *trip
	return &copied, nil
}

func (r *MemoryScheduleRepository) GetTripByID(tripID string) (*model.Trip, error) {
	trip, ok := r.getTrip(tripID)
	if !ok {
		return nil, repository.ErrTripNotFound
	}

	lock := r.tripLock(tripID)
	lock.Lock()
	copied := *trip
	lock.Unlock()

	return &copied, nil
}

func (r *MemoryScheduleRepository) SearchTrips(filter model.TripFilter) ([]model.Trip, error) {
	dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	// Route and departure time are immutable after creation, so matching can
	// happen under the table lock. SeatsAvailable is not: each copy must run
	// inside its trip's critical section or a concurrent allocate/release
	// races the read.
	r.mu.RLock()
	var matched []*model.Trip
	for _, trip := range r.trips {
		if trip.Route.Origin != filter.Origin || trip.Route.Destination != filter.Destination {
			continue
		}
		if trip.DepartureTime.Before(dayStart) || !trip.DepartureTime.Before(dayEnd) {
			continue
		}
		matched = append(matched, trip)
	}
	r.mu.RUnlock()

	trips := make([]model.Trip, 0, len(matched))
	for _, trip := range matched {
		lock := r.tripLock(trip.ID)
		lock.Lock()
		trips = append(trips, *trip)
		lock.Unlock()
	}
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].DepartureTime.Before(trips[j].DepartureTime)
	})
	return trips, nil
}

// Seat inventory operations
func (r *MemoryScheduleRepository) AllocateSeats(tripID string, count int) (int, error) {
	trip, ok := r.getTrip(tripID)
	if !ok {
		return 0, repository.ErrTripNotFound
	}

	lock := r.tripLock(tripID)
	lock.Lock()
	defer lock.Unlock()

	if trip.SeatsAvailable < count {
		return 0, &repository.InsufficientSeatsError{Available: trip.SeatsAvailable}
	}

	trip.SeatsAvailable -= count
	return trip.SeatsAvailable, nil
}

func (r *MemoryScheduleRepository) ReleaseSeats(tripID string, count int) (int, int, error) {
	trip, ok := r.getTrip(tripID)
	if !ok {
		return 0, 0, repository.ErrTripNotFound
	}

	lock := r.tripLock(tripID)
	lock.Lock()
	defer lock.Unlock()

	newAvailable := trip.SeatsAvailable + count
	if newAvailable > trip.SeatsTotal {
		newAvailable = trip.SeatsTotal
	}
	released := newAvailable - trip.SeatsAvailable
	trip.SeatsAvailable = newAvailable

	return released, trip.SeatsAvailable, nil
}

func (r *MemoryScheduleRepository) GetAvailability(tripID string) (int, error) {
	trip, ok := r.getTrip(tripID)
	if !ok {
		return 0, repository.ErrTripNotFound
	}

	lock := r.tripLock(tripID)
	lock.Lock()
	defer lock.Unlock()

	return trip.SeatsAvailable, nil
}

// SeedIfEmpty populates the same demo schedule the postgres implementation
// seeds on first boot
func (r *MemoryScheduleRepository) SeedIfEmpty() error {
	r.mu.RLock()
	empty := len(r.routes) == 0
	r.mu.RUnlock()
	if !empty {
		return nil
	}

	routePairs := [][2]string{
		{"City A", "City B"},
		{"City A", "City C"},
		{"City B", "City C"},
	}
	now := time.Now().UTC().Truncate(time.Hour)

	for _, pair := range routePairs {
		route, err := r.CreateRoute(model.CreateRouteRequest{Origin: pair[0], Destination: pair[1]})
		if err != nil {
			return err
		}
		for _, h := range []int{2, 6, 10} {
			_, err := r.CreateTrip(model.CreateTripRequest{
				RouteID:       route.ID,
				DepartureTime: now.Add(time.Duration(h) * time.Hour),
				SeatsTotal:    40,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *MemoryScheduleRepository) Ping() error {
	return nil
}
