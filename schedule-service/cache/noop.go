package cache

import (
	"time"

	"github.com/arunvm123/busreservation/schedule-service/model"
)

// NoopCache satisfies CacheRepository without caching anything. Used when
// the service runs against the in-memory store, where a cache layer would
// only add staleness.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) GetTrip(tripID string) (*model.Trip, error)                        { return nil, nil }
func (NoopCache) SetTrip(tripID string, trip *model.Trip, ttl time.Duration) error  { return nil }
func (NoopCache) InvalidateTrip(tripID string) error                                { return nil }
func (NoopCache) GetAvailability(tripID string) (int, error)                        { return -1, nil }
func (NoopCache) SetAvailability(tripID string, count int, ttl time.Duration) error { return nil }
func (NoopCache) InvalidateAvailability(tripID string) error                        { return nil }
