package cache

import (
	"time"

	"github.com/arunvm123/busreservation/schedule-service/model"
)

// CacheRepository defines the caching interface for trip data.
//
// Cached availability is advisory only: it serves the read-only availability
// endpoint and is invalidated on every allocate/release, but the allocate
// path never consults it. Decisions about seats are made solely inside the
// repository's per-trip critical section.
type CacheRepository interface {
	// Trip detail caching
	GetTrip(tripID string) (*model.Trip, error)
	SetTrip(tripID string, trip *model.Trip, ttl time.Duration) error
	InvalidateTrip(tripID string) error

	// Availability caching. GetAvailability returns -1 on a cache miss.
	GetAvailability(tripID string) (int, error)
	SetAvailability(tripID string, seatsAvailable int, ttl time.Duration) error
	InvalidateAvailability(tripID string) error
}
